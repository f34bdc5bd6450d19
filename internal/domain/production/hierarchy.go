package production

// EntityType identifies one level of the manufacturing hierarchy.
type EntityType string

const (
	TypeProject   EntityType = "project"
	TypeComponent EntityType = "component"
	TypeAssembly  EntityType = "assembly"
	TypePiece     EntityType = "piece"
	TypeArticle   EntityType = "article"
)

// ChildLink describes one parent-to-child edge: which table holds the
// children and which column points back at the parent.
type ChildLink struct {
	Type       EntityType
	Table      string
	ForeignKey string
}

// ParentRef describes one child-to-parent reference that bulk sync must
// validate. Refs are ordered from the hierarchy root down, so the last
// non-nil ref on a record is its immediate parent.
type ParentRef struct {
	Type     EntityType
	Column   string
	Optional bool
}

// entityTables maps each type to its table. This map, childLinks and
// parentRefs together are the single source of truth for the cascade
// engine and for sync referential validation; adding a level to the
// hierarchy means extending these three maps and nothing else.
var entityTables = map[EntityType]string{
	TypeProject:   "projects",
	TypeComponent: "components",
	TypeAssembly:  "assemblies",
	TypePiece:     "pieces",
	TypeArticle:   "articles",
}

var childLinks = map[EntityType][]ChildLink{
	TypeProject: {
		{Type: TypeComponent, Table: "components", ForeignKey: "project_guid"},
		{Type: TypeAssembly, Table: "assemblies", ForeignKey: "project_guid"},
		{Type: TypePiece, Table: "pieces", ForeignKey: "project_guid"},
		{Type: TypeArticle, Table: "articles", ForeignKey: "project_guid"},
	},
	TypeComponent: {
		{Type: TypeAssembly, Table: "assemblies", ForeignKey: "component_guid"},
		{Type: TypePiece, Table: "pieces", ForeignKey: "component_guid"},
		{Type: TypeArticle, Table: "articles", ForeignKey: "component_guid"},
	},
	TypeAssembly: {
		{Type: TypePiece, Table: "pieces", ForeignKey: "assembly_guid"},
	},
	TypePiece:   {},
	TypeArticle: {},
}

var parentRefs = map[EntityType][]ParentRef{
	TypeProject: {},
	TypeComponent: {
		{Type: TypeProject, Column: "project_guid"},
	},
	TypeAssembly: {
		{Type: TypeProject, Column: "project_guid"},
		{Type: TypeComponent, Column: "component_guid"},
	},
	TypePiece: {
		{Type: TypeProject, Column: "project_guid"},
		{Type: TypeComponent, Column: "component_guid"},
		{Type: TypeAssembly, Column: "assembly_guid", Optional: true},
	},
	TypeArticle: {
		{Type: TypeProject, Column: "project_guid"},
		{Type: TypeComponent, Column: "component_guid"},
	},
}

// Valid reports whether t names a known hierarchy level
func (t EntityType) Valid() bool {
	_, ok := entityTables[t]
	return ok
}

// Table returns the database table for t
func (t EntityType) Table() string {
	return entityTables[t]
}

// ChildLinks returns the direct child edges of t, in cascade order
func ChildLinks(t EntityType) []ChildLink {
	return childLinks[t]
}

// ParentRefs returns the parent references of t, root first
func ParentRefs(t EntityType) []ParentRef {
	return parentRefs[t]
}

// Model returns a fresh entity value for t, for use as a GORM model
func (t EntityType) Model() interface{} {
	switch t {
	case TypeProject:
		return &Project{}
	case TypeComponent:
		return &Component{}
	case TypeAssembly:
		return &Assembly{}
	case TypePiece:
		return &Piece{}
	case TypeArticle:
		return &Article{}
	}
	return nil
}

// ParseEntityType converts a URL path segment (plural) into an EntityType
func ParseEntityType(s string) (EntityType, bool) {
	switch s {
	case "projects":
		return TypeProject, true
	case "components":
		return TypeComponent, true
	case "assemblies":
		return TypeAssembly, true
	case "pieces":
		return TypePiece, true
	case "articles":
		return TypeArticle, true
	}
	return "", false
}
