package email

import "fmt"

// TicketCalledData fills the "your ticket was called" notification.
type TicketCalledData struct {
	Email        string
	TicketNumber string
	Counter      string
	ServiceType  string
	BranchName   string
}

// BuildTicketCalledEmail renders the notification sent when a customer's
// ticket is called to a counter.
func BuildTicketCalledEmail(data TicketCalledData) Message {
	branch := data.BranchName
	if branch == "" {
		branch = "your branch"
	}

	subject := fmt.Sprintf("Ticket %s: please proceed to %s", data.TicketNumber, data.Counter)

	textBody := fmt.Sprintf(`Your ticket %s has been called.

Please proceed to %s at %s.

Service: %s`,
		data.TicketNumber, data.Counter, branch, data.ServiceType)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Ticket %s called</h2>
    <p>Please proceed to <strong>%s</strong> at %s.</p>
    <p>Service: %s</p>
</body>
</html>`,
		data.TicketNumber, data.Counter, branch, data.ServiceType)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}
