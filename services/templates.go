package services

import (
	"fmt"

	"reachout-backend/models"
)

// TemplateKind selects the wording of an outbound message.
type TemplateKind string

const (
	TemplateMatched   TemplateKind = "matched"
	TemplateAccepted  TemplateKind = "accepted"
	TemplateDeclined  TemplateKind = "declined"
	TemplateCompleted TemplateKind = "completed"
	TemplateNoMatch   TemplateKind = "no-match"
)

// RenderMessage builds the human-readable message for one recipient.
func RenderMessage(kind TemplateKind, donor *models.Donor, req *models.BloodRequest) string {
	switch kind {
	case TemplateMatched:
		return fmt.Sprintf(
			"Hello %s, you have been matched with a blood request. Blood type needed: %s, Hospital: %s, Urgency: %s. Please respond if you can donate.",
			donor.Name, req.BloodType, req.HospitalName(), req.UrgencyLevel)
	case TemplateAccepted:
		return fmt.Sprintf("Thank you for accepting to donate for %s at %s.",
			req.PatientName, req.HospitalName())
	case TemplateDeclined:
		return fmt.Sprintf("You declined the donation request for %s.", req.PatientName)
	case TemplateCompleted:
		return fmt.Sprintf("Thank you for your donation! You helped save a life at %s.",
			req.HospitalName())
	case TemplateNoMatch:
		return fmt.Sprintf(
			"We regret to inform you that no matching donors have been found yet for your blood request (type %s). We will continue searching and notify you when a match is found.",
			req.BloodType)
	default:
		return fmt.Sprintf("Your donation status has been updated to: %s", kind)
	}
}

// TemplateForStatus maps an externally applied match status to the
// follow-up template it triggers.
func TemplateForStatus(status models.MatchStatus) (TemplateKind, bool) {
	switch status {
	case models.MatchStatusAccepted:
		return TemplateAccepted, true
	case models.MatchStatusDeclined:
		return TemplateDeclined, true
	case models.MatchStatusCompleted:
		return TemplateCompleted, true
	}
	return "", false
}
