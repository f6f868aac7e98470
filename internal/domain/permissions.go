package domain

// Permission names. Children are only effective when their parent is granted.
const (
	PermissionGroupClinic = "Clinic"

	PermissionStudents       = PermissionGroupClinic + ".Students"
	PermissionStudentsCreate = PermissionStudents + ".Create"
	PermissionStudentsEdit   = PermissionStudents + ".Edit"
	PermissionStudentsDelete = PermissionStudents + ".Delete"
)

// PermissionDefinition describes a named permission and its children.
type PermissionDefinition struct {
	Name        string                 `json:"name"`
	DisplayName string                 `json:"display_name"`
	Children    []PermissionDefinition `json:"children,omitempty"`
}

// PermissionGroup is a top-level grouping of permission definitions.
type PermissionGroup struct {
	Name        string                 `json:"name"`
	Permissions []PermissionDefinition `json:"permissions"`
}

// PermissionGroups returns the permission tree of the application.
func PermissionGroups() []PermissionGroup {
	return []PermissionGroup{
		{
			Name: PermissionGroupClinic,
			Permissions: []PermissionDefinition{
				{
					Name:        PermissionStudents,
					DisplayName: "Student management",
					Children: []PermissionDefinition{
						{Name: PermissionStudentsCreate, DisplayName: "Create students"},
						{Name: PermissionStudentsEdit, DisplayName: "Edit students"},
						{Name: PermissionStudentsDelete, DisplayName: "Delete students"},
					},
				},
			},
		},
	}
}

// AllPermissions returns every defined permission name, parents first.
func AllPermissions() []string {
	var names []string
	var walk func([]PermissionDefinition)
	walk = func(defs []PermissionDefinition) {
		for _, d := range defs {
			names = append(names, d.Name)
			walk(d.Children)
		}
	}
	for _, g := range PermissionGroups() {
		walk(g.Permissions)
	}
	return names
}

// parentOf maps each child permission to its parent.
var parentOf = func() map[string]string {
	m := make(map[string]string)
	var walk func(parent string, defs []PermissionDefinition)
	walk = func(parent string, defs []PermissionDefinition) {
		for _, d := range defs {
			m[d.Name] = parent
			walk(d.Name, d.Children)
		}
	}
	for _, g := range PermissionGroups() {
		walk("", g.Permissions)
	}
	return m
}()

// IsDefinedPermission reports whether name is part of the permission tree.
func IsDefinedPermission(name string) bool {
	_, ok := parentOf[name]
	return ok
}

// IsGranted reports whether name is effectively granted: it and every
// ancestor must be in granted, and it must be a defined permission.
func IsGranted(granted []string, name string) bool {
	if !IsDefinedPermission(name) {
		return false
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	for p := name; p != ""; p = parentOf[p] {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}
