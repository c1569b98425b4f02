package widget

import "github.com/alfredjeanlab/orgwidget/internal/model"

// DisplayStatus is the presentation category of an organization status.
type DisplayStatus string

const (
	StatusActive   DisplayStatus = "active"
	StatusOnHold   DisplayStatus = "on-hold"
	StatusInactive DisplayStatus = "inactive"
	StatusUnknown  DisplayStatus = "unknown"
)

// Tone is the visual weight of a status tag.
type Tone string

const (
	ToneNone    Tone = ""
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneError   Tone = "error"
)

// Message identifiers resolved by the Localizer.
const (
	messagePrefix = "store/b2b-organizations.user-widget."

	MsgRole               = messagePrefix + "role"
	MsgOrganization       = messagePrefix + "organization"
	MsgCostCenter         = messagePrefix + "costCenter"
	MsgStatus             = messagePrefix + "status"
	MsgStatusActive       = messagePrefix + "status.active"
	MsgStatusOnHold       = messagePrefix + "status.on-hold"
	MsgStatusInactive     = messagePrefix + "status.inactive"
	MsgManageOrganization = messagePrefix + "manage-organization"
)

// MessageIDs lists every identifier the widget asks a Localizer for.
var MessageIDs = []string{
	MsgRole, MsgOrganization, MsgCostCenter, MsgStatus,
	MsgStatusActive, MsgStatusOnHold, MsgStatusInactive,
	MsgManageOrganization,
}

// Localizer resolves message identifiers to display text. Unknown
// identifiers resolve to "".
type Localizer interface {
	Localize(messageID string) string
}

// Classification is the classifier output for one organization status.
type Classification struct {
	Status    DisplayStatus `json:"status"`
	MessageID string        `json:"message_id,omitempty"`
	Tone      Tone          `json:"tone,omitempty"`
}

// Label returns the localized status text, or "" for unknown statuses.
func (c Classification) Label(l Localizer) string {
	if c.MessageID == "" || l == nil {
		return ""
	}
	return l.Localize(c.MessageID)
}

// Tagged reports whether a status tag should be rendered.
func (c Classification) Tagged() bool { return c.Status != StatusUnknown }

// Classify maps a raw organization status to its presentation. It is total:
// anything unrecognized, including "", is StatusUnknown with no message.
func Classify(status model.OrganizationStatus) Classification {
	switch status {
	case model.OrganizationActive:
		return Classification{Status: StatusActive, MessageID: MsgStatusActive, Tone: ToneSuccess}
	case model.OrganizationOnHold:
		return Classification{Status: StatusOnHold, MessageID: MsgStatusOnHold, Tone: ToneWarning}
	case model.OrganizationInactive:
		return Classification{Status: StatusInactive, MessageID: MsgStatusInactive, Tone: ToneError}
	default:
		return Classification{Status: StatusUnknown}
	}
}
