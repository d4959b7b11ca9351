package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"library-lending-backend/internal/domain"
)

type sendGridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &sendGridEmailService{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName}
}

func (s *sendGridEmailService) send(to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
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

func (s *sendGridEmailService) SendBorrowRequestNotification(ctx context.Context, to, ownerName, borrowerName, bookTitle string) error {
	subject := fmt.Sprintf("New borrow request: %s", bookTitle)
	plainText := fmt.Sprintf("%s wants to borrow your copy of %q. Approve or reject the request in your lending dashboard.", borrowerName, bookTitle)
	htmlContent := fmt.Sprintf("<p><strong>%s</strong> wants to borrow your copy of <em>%s</em>.</p><p>Approve or reject the request in your lending dashboard.</p>", borrowerName, bookTitle)
	return s.send(to, ownerName, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendLoanDecisionNotification(ctx context.Context, to, borrowerName, bookTitle string, approved bool) error {
	decision := "approved"
	detail := "You can pick the book up during opening hours."
	if !approved {
		decision = "rejected"
		detail = "The held copy has been released back to the catalog."
	}
	subject := fmt.Sprintf("Your borrow request was %s: %s", decision, bookTitle)
	plainText := fmt.Sprintf("Your request for %q was %s. %s", bookTitle, decision, detail)
	htmlContent := fmt.Sprintf("<p>Your request for <em>%s</em> was <strong>%s</strong>.</p><p>%s</p>", bookTitle, decision, detail)
	return s.send(to, borrowerName, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendDueReminder(ctx context.Context, to, borrowerName, bookTitle string, dueDate time.Time) error {
	subject := fmt.Sprintf("Due soon: %s", bookTitle)
	plainText := fmt.Sprintf("%q is due back on %s. Return it in time to avoid fines.", bookTitle, dueDate.Format("January 2, 2006"))
	htmlContent := fmt.Sprintf("<p><em>%s</em> is due back on <strong>%s</strong>.</p><p>Return it in time to avoid fines.</p>", bookTitle, dueDate.Format("January 2, 2006"))
	return s.send(to, borrowerName, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendOverdueNotice(ctx context.Context, to, borrowerName, bookTitle string, daysLate int, fineCents int64) error {
	subject := fmt.Sprintf("Overdue: %s", bookTitle)
	plainText := fmt.Sprintf("%q is %d day(s) overdue. Your current fine is $%.2f and grows daily until the book is returned.", bookTitle, daysLate, float64(fineCents)/100)
	htmlContent := fmt.Sprintf("<p><em>%s</em> is <strong>%d day(s)</strong> overdue.</p><p>Your current fine is $%.2f and grows daily until the book is returned.</p>", bookTitle, daysLate, float64(fineCents)/100)
	return s.send(to, borrowerName, subject, plainText, htmlContent)
}

func (s *sendGridEmailService) SendAccountStatusNotification(ctx context.Context, to, name string, status domain.UserStatus) error {
	subject := fmt.Sprintf("Your library account is now %s", status)
	plainText := fmt.Sprintf("Your library account status changed to %s. Contact the library if you believe this is a mistake.", status)
	htmlContent := fmt.Sprintf("<p>Your library account status changed to <strong>%s</strong>.</p><p>Contact the library if you believe this is a mistake.</p>", status)
	return s.send(to, name, subject, plainText, htmlContent)
}
