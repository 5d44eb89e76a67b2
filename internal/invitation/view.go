package invitation

// View is the screen currently shown to a guest
type View string

const (
	ViewWelcome    View = "welcome"
	ViewInvitation View = "invitation"
)

// ViewController moves a guest from the welcome screen to the invitation.
// The transition is one way; there is no route back to the welcome screen.
type ViewController struct {
	view View
}

// NewViewController returns a controller showing the welcome screen
func NewViewController() *ViewController {
	return &ViewController{view: ViewWelcome}
}

// View returns the current screen
func (c *ViewController) View() View {
	return c.view
}

// Enter switches to the invitation screen. Calling it again has no effect.
func (c *ViewController) Enter() {
	c.view = ViewInvitation
}
