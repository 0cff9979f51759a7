package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendgridEmailService delivers workflow emails through SendGrid. Callers
// treat delivery as best-effort; a failed send never rolls back a decision.
type sendgridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	portalURL string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName, portalURL string) EmailService {
	return &sendgridEmailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		portalURL: portalURL,
	}
}

func (s *sendgridEmailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	htmlContent := "<html><body><p>" + strings.ReplaceAll(plainText, "\n", "<br>") + "</p></body></html>"
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *sendgridEmailService) SendApplicationReceived(_ context.Context, email, name, code string) error {
	subject := fmt.Sprintf("Application %s received", code)
	body := fmt.Sprintf("Dear %s,\n\nYour open access application %s was received and is now under feasibility review.\nYou can follow its progress at %s.", name, code, s.portalURL)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendFeasibilityRequest(_ context.Context, email, name, code, nodeName string) error {
	subject := fmt.Sprintf("Feasibility review requested: %s", code)
	body := fmt.Sprintf("Dear %s,\n\nApplication %s requests equipment at %s and awaits your feasibility review at %s.", name, code, nodeName, s.portalURL)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendFeasibilityReminder(_ context.Context, email, name, code, nodeName string) error {
	subject := fmt.Sprintf("Reminder: feasibility review pending for %s", code)
	body := fmt.Sprintf("Dear %s,\n\nThe feasibility review of application %s at %s is still pending. Please record your decision at %s.", name, code, nodeName, s.portalURL)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendFeasibilityRejected(_ context.Context, email, name, code string, nodeComments []string) error {
	subject := fmt.Sprintf("Application %s: not feasible", code)
	body := fmt.Sprintf("Dear %s,\n\nApplication %s could not proceed because the requested access is not technically feasible.", name, code)
	if len(nodeComments) > 0 {
		body += "\n\nReviewer comments:\n" + strings.Join(nodeComments, "\n")
	}
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendFeasibilityApproved(_ context.Context, email, name, code string) error {
	subject := fmt.Sprintf("Application %s: feasibility confirmed", code)
	body := fmt.Sprintf("Dear %s,\n\nAll involved nodes confirmed the feasibility of application %s. It now moves to scientific evaluation.", name, code)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendEvaluationAssigned(_ context.Context, email, name, code string) error {
	subject := fmt.Sprintf("Evaluation assigned: %s", code)
	body := fmt.Sprintf("Dear %s,\n\nYou were assigned to evaluate application %s. Please submit your scores at %s.", name, code, s.portalURL)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendEvaluationComplete(_ context.Context, email, name, code string, finalScore float64) error {
	subject := fmt.Sprintf("Evaluation complete: %s", code)
	body := fmt.Sprintf("Dear %s,\n\nApplication %s finished evaluation with a final score of %.1f and awaits the node resolutions.", name, code, finalScore)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendResolutionAccepted(_ context.Context, email, name, code string, deadlineDays int, breakdown []string) error {
	subject := fmt.Sprintf("Application %s accepted", code)
	body := fmt.Sprintf("Dear %s,\n\nCongratulations, application %s was accepted.\n\nNode decisions:\n%s\n\nPlease confirm or decline the granted access within %d days at %s.",
		name, code, strings.Join(breakdown, "\n"), deadlineDays, s.portalURL)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendResolutionPending(_ context.Context, email, name, code string, breakdown []string) error {
	subject := fmt.Sprintf("Application %s waitlisted", code)
	body := fmt.Sprintf("Dear %s,\n\nApplication %s was placed on the waiting list.\n\nNode decisions:\n%s\n\nYou will be notified if capacity becomes available.",
		name, code, strings.Join(breakdown, "\n"))
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendResolutionRejected(_ context.Context, email, name, code string, breakdown []string) error {
	subject := fmt.Sprintf("Application %s rejected", code)
	body := fmt.Sprintf("Dear %s,\n\nWe regret to inform you that application %s was rejected.\n\nNode decisions:\n%s",
		name, code, strings.Join(breakdown, "\n"))
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendAcceptanceReminder(_ context.Context, email, name, code string, daysLeft int) error {
	subject := fmt.Sprintf("Reminder: confirm application %s", code)
	body := fmt.Sprintf("Dear %s,\n\nApplication %s is still awaiting your confirmation. The offer lapses in %d day(s). Respond at %s.", name, code, daysLeft, s.portalURL)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendAcceptanceExpired(_ context.Context, email, name, code string) error {
	subject := fmt.Sprintf("Application %s expired", code)
	body := fmt.Sprintf("Dear %s,\n\nThe confirmation window for application %s elapsed without a response, so the granted access lapsed.", name, code)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendHandoffConfirmed(_ context.Context, email, name, code, applicantName, applicantEmail string) error {
	subject := fmt.Sprintf("Access confirmed: %s", code)
	body := fmt.Sprintf("Dear %s,\n\n%s (%s) confirmed application %s. Please contact the applicant to schedule the granted equipment access.", name, applicantName, applicantEmail, code)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendApplicantDeclined(_ context.Context, email, name, code, applicantName string) error {
	subject := fmt.Sprintf("Access declined: %s", code)
	body := fmt.Sprintf("Dear %s,\n\n%s declined the granted access for application %s. The approved hours were released.", name, applicantName, code)
	return s.send(email, name, subject, body)
}

func (s *sendgridEmailService) SendAccessCompleted(_ context.Context, email, name, code, acknowledgment string) error {
	subject := fmt.Sprintf("Application %s completed", code)
	body := fmt.Sprintf("Dear %s,\n\nAll granted access for application %s has concluded. Please report any resulting publications at %s.", name, code, s.portalURL)
	if acknowledgment != "" {
		body += "\n\nPlease include the following acknowledgment in your publications:\n" + acknowledgment
	}
	return s.send(email, name, subject, body)
}
