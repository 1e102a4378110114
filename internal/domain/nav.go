package domain

// NavItem is one entry of the front-end navigation.
// VisibleTo lists every role that should see the entry.
type NavItem struct {
	Route     string
	Label     string
	VisibleTo []Role
}

// visibleFor reports whether the item is shown to role.
func (n NavItem) visibleFor(role Role) bool {
	for _, r := range n.VisibleTo {
		if r == role {
			return true
		}
	}
	return false
}

var (
	everyone      = []Role{RoleAnonymous, RoleUser, RoleDeveloper, RoleAdmin}
	signedIn      = []Role{RoleUser, RoleDeveloper, RoleAdmin}
	publishers    = []Role{RoleDeveloper, RoleAdmin}
	administrator = []Role{RoleAdmin}
)

// NavItems is the navigation table, in display order.
var NavItems = []NavItem{
	{Route: "/", Label: "Home", VisibleTo: everyone},
	{Route: "/tools", Label: "Tools", VisibleTo: everyone},
	{Route: "/developers", Label: "Developers", VisibleTo: everyone},
	{Route: "/blog", Label: "Blog", VisibleTo: everyone},
	{Route: "/login", Label: "Sign in", VisibleTo: []Role{RoleAnonymous}},
	{Route: "/profile", Label: "My profile", VisibleTo: signedIn},
	{Route: "/dashboard/tools", Label: "My tools", VisibleTo: publishers},
	{Route: "/dashboard/posts", Label: "My posts", VisibleTo: publishers},
	{Route: "/admin", Label: "Admin", VisibleTo: administrator},
}

// VisibleNav returns the entries of NavItems visible to role, in table order.
// Always returns a non-nil slice.
func VisibleNav(role Role) []NavItem {
	out := []NavItem{}
	for _, item := range NavItems {
		if item.visibleFor(role) {
			out = append(out, item)
		}
	}
	return out
}
