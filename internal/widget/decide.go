package widget

import "github.com/alfredjeanlab/orgwidget/internal/model"

// ManageSuffix is appended to the storefront root path to reach the
// organization management page.
const ManageSuffix = "/account#/organization"

// ManagePath returns the navigation target for the manage action.
func ManagePath(rootPath string) string {
	return rootPath + ManageSuffix
}

// Inputs are everything the render decision depends on.
type Inputs struct {
	Authenticated bool
	Permission    Slot[model.Permission]
	Organization  Slot[model.Organization]
	CostCenter    Slot[model.CostCenter]
}

// InputsFrom combines the auth flag with a set of lookup results.
func InputsFrom(authenticated bool, r Results) Inputs {
	return Inputs{
		Authenticated: authenticated,
		Permission:    r.Permission,
		Organization:  r.Organization,
		CostCenter:    r.CostCenter,
	}
}

// State is the widget's display state.
type State int

const (
	Hidden State = iota
	Shown
)

func (s State) String() string {
	if s == Shown {
		return "shown"
	}
	return "hidden"
}

// Action is the navigation descriptor of the manage link.
type Action struct {
	Path      string `json:"path"`
	MessageID string `json:"message_id"`
}

// Content is what a Shown widget displays.
type Content struct {
	OrganizationName string         `json:"organization_name"`
	Status           Classification `json:"status"`
	CostCenterName   string         `json:"cost_center_name"`
	RoleName         string         `json:"role_name"`
	Action           Action         `json:"action"`
}

// View is the outcome of one render decision. Content is nil when Hidden.
type View struct {
	State   State    `json:"-"`
	Content *Content `json:"content,omitempty"`
}

// Visible reports whether the widget renders anything.
func (v View) Visible() bool { return v.State == Shown && v.Content != nil }

// Decide reduces the inputs to a View. The widget is Shown only when the
// shopper is authenticated and all three records are present; anything
// else, including a failed lookup, is Hidden.
func Decide(in Inputs, rootPath string) View {
	if !in.Authenticated || !in.Permission.Present() || !in.Organization.Present() || !in.CostCenter.Present() {
		return View{State: Hidden}
	}
	org := in.Organization.Value
	return View{
		State: Shown,
		Content: &Content{
			OrganizationName: org.Name,
			Status:           Classify(org.Status),
			CostCenterName:   in.CostCenter.Value.Name,
			RoleName:         in.Permission.Value.Role.Name,
			Action: Action{
				Path:      ManagePath(rootPath),
				MessageID: MsgManageOrganization,
			},
		},
	}
}

// Equal reports whether two views would render identically.
func (v View) Equal(o View) bool {
	if v.State != o.State {
		return false
	}
	if v.Content == nil || o.Content == nil {
		return v.Content == o.Content
	}
	return *v.Content == *o.Content
}
