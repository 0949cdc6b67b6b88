package tray

// MenuAction identifies a tray menu entry
type MenuAction string

const (
	ActionOpen   MenuAction = "open"
	ActionIngest MenuAction = "ingest"
	ActionQuit   MenuAction = "quit"
)

// MenuItem describes one fixed tray menu entry
type MenuItem struct {
	Action  MenuAction
	Label   string
	Tooltip string
}

// IngestMessage is the notification text sent after a successful ingest
const IngestMessage = "Ingest triggered"

var menuItems = []MenuItem{
	{Action: ActionOpen, Label: "Open UI", Tooltip: "Show the Context Cache window"},
	{Action: ActionIngest, Label: "Ingest Now", Tooltip: "Ingest all registered sources"},
	{Action: ActionQuit, Label: "Quit", Tooltip: "Exit the application"},
}

// Items returns the tray menu entries in display order
func Items() []MenuItem {
	items := make([]MenuItem, len(menuItems))
	copy(items, menuItems)
	return items
}
