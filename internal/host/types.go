package host

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reason tells a lifecycle entry point why it was invoked.
// Values match the bootstrap constants browsers pass to add-ons.
type Reason int

const (
	ReasonAppStartup     Reason = 1
	ReasonAppShutdown    Reason = 2
	ReasonAddonEnable    Reason = 3
	ReasonAddonDisable   Reason = 4
	ReasonAddonInstall   Reason = 5
	ReasonAddonUninstall Reason = 6
	ReasonAddonUpgrade   Reason = 7
	ReasonAddonDowngrade Reason = 8
)

var reasonNames = map[Reason]string{
	ReasonAppStartup:     "APP_STARTUP",
	ReasonAppShutdown:    "APP_SHUTDOWN",
	ReasonAddonEnable:    "ADDON_ENABLE",
	ReasonAddonDisable:   "ADDON_DISABLE",
	ReasonAddonInstall:   "ADDON_INSTALL",
	ReasonAddonUninstall: "ADDON_UNINSTALL",
	ReasonAddonUpgrade:   "ADDON_UPGRADE",
	ReasonAddonDowngrade: "ADDON_DOWNGRADE",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return fmt.Sprintf("REASON(%d)", int(r))
}

// ParseReason accepts "ADDON_INSTALL", "addon_install", "install" and the like.
func ParseReason(s string) (Reason, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for r, name := range reasonNames {
		if want == name || "ADDON_"+want == name || "APP_"+want == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown lifecycle reason %q", s)
}

// AddonData is the host-supplied description of the add-on instance.
type AddonData struct {
	ID          string
	Version     string
	InstallPath string
}

// ViewType identifies how a panel view is drawn.
type ViewType string

const ViewList ViewType = "list"

// View describes one view of a panel.
type View struct {
	Type      ViewType
	Dataset   string
	OnRefresh func(ctx context.Context)
}

// PanelOptions is returned by the options callback a panel registers with.
type PanelOptions struct {
	Title string
	Views []View
}

// Row is one entry in a host-managed dataset.
type Row struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	BackgroundColor string `json:"background_color,omitempty"`
}

// Message is a request sent over the host messaging channel.
type Message struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// MessageGetActive asks the host for the experiments it currently activates.
const MessageGetActive = "Experiments:GetActive"

// PanelRegistry registers home panels with the host shell.
type PanelRegistry interface {
	Register(id string, options func() PanelOptions) error
	Unregister(id string) error
	Install(id string) error
	Update(id string) error
	Uninstall(id string) error
}

// Scheduler invokes callbacks roughly every interval. Timing and jitter are
// host-controlled.
type Scheduler interface {
	AddPeriodicSync(datasetID string, interval time.Duration, callback func(ctx context.Context)) error
}

// RowStore is the storage for one dataset.
type RowStore interface {
	DeleteAll(ctx context.Context) error
	Save(ctx context.Context, rows []Row) error
}

// RowStorage hands out per-dataset stores.
type RowStorage interface {
	Storage(datasetID string) RowStore
}

// Messenger sends a request to the host and waits for its result.
type Messenger interface {
	SendRequestForResult(ctx context.Context, msg Message) (any, error)
}

// OverrideService owns per-experiment override flags.
type OverrideService interface {
	SetOverride(ctx context.Context, name string, enabled bool) error
	ClearOverride(ctx context.Context, name string) error
}

// Page is one loaded instance of an internal page.
type Page interface {
	// Load runs the page's DOM-ready flow.
	Load(ctx context.Context) error
	// HTML serializes the current document.
	HTML() (string, error)
	// Click dispatches a click on the list row with the given name and
	// returns the row's new state.
	Click(ctx context.Context, name string) (bool, error)
}

// PageFactory creates a fresh page for each navigation.
type PageFactory func() Page

// PageRegistry maps about: URIs to page factories.
type PageRegistry interface {
	RegisterFactory(classID uuid.UUID, description, contract string, factory PageFactory) error
	UnregisterFactory(classID uuid.UUID) error
}

// Host bundles every service the add-on consumes.
type Host struct {
	Panels    PanelRegistry
	Scheduler Scheduler
	Storage   RowStorage
	Messenger Messenger
	Overrides OverrideService
	Pages     PageRegistry
}
