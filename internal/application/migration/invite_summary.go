package migration

import "fmt"

const (
	singleInviteMessage = "You can't add %s automatically. They have been invited to join and will not see group messages until they accept."
	multiInviteMessage  = "You can't add these users automatically. They have been invited to join and will not see group messages until they accept."
)

// InviteSummary describes the invitations sent by an add attempt.
type InviteSummary struct {
	Title   string      `json:"title,omitempty"`
	Message string      `json:"message,omitempty"`
	Pending []Recipient `json:"pending,omitempty"`
}

// Empty reports whether no invitation was sent.
func (s InviteSummary) Empty() bool {
	return s.Title == ""
}

// SummarizeInvites builds the summary for the invited recipients.
func SummarizeInvites(invited []Recipient) InviteSummary {
	switch len(invited) {
	case 0:
		return InviteSummary{}
	case 1:
		return InviteSummary{
			Title:   "Invitation sent",
			Message: fmt.Sprintf(singleInviteMessage, invited[0].DisplayName),
		}
	default:
		pending := make([]Recipient, len(invited))
		copy(pending, invited)
		return InviteSummary{
			Title:   fmt.Sprintf("%d invitations sent", len(invited)),
			Message: multiInviteMessage,
			Pending: pending,
		}
	}
}
