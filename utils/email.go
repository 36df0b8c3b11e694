package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fluencyclub/schoolcrm/models"
	"gopkg.in/gomail.v2"
)

// SendEmail sends an HTML email over SMTP. When SMTP is not configured
// the message is logged and dropped, so notification failures never block
// business flows.
func SendEmail(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		LogInfo("SMTP not configured, skipping email to %s: %s", to, subject)
		return nil
	}

	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SendPaymentConfirmationEmail notifies a student that their course
// payment settled and access is open.
func SendPaymentConfirmationEmail(payment *models.Payment) error {
	if payment.Student.Email == "" {
		LogInfo("Payment ID %d: student has no email, skipping confirmation", payment.ID)
		return nil
	}

	courseTitle := "your course"
	if payment.Course != nil {
		courseTitle = payment.Course.Title
	}

	paidAt := ""
	if payment.PaidAt != nil {
		paidAt = payment.PaidAt.Format("02.01.2006 15:04")
	}

	subject := "Payment confirmation: " + courseTitle
	body := fmt.Sprintf(`
		<h2>Hello, %s!</h2>
		<p>Thank you for your payment for "%s".</p>
		<p>Payment details:</p>
		<ul>
			<li>Amount: %.2f %s</li>
			<li>Paid at: %s</li>
			<li>Transaction: %s</li>
		</ul>
		<p>You are enrolled. Access to lessons is now open.</p>
	`, payment.Student.FullName(), courseTitle, payment.Amount, payment.Currency, paidAt, payment.TransactionID)

	if err := SendEmail(payment.Student.Email, subject, body); err != nil {
		return err
	}
	LogInfo("Sent payment confirmation email to %s", payment.Student.Email)
	return nil
}

// SendPaymentFailureEmail notifies a student that a payment did not go through.
func SendPaymentFailureEmail(payment *models.Payment, reason string) error {
	if payment.Student.Email == "" {
		return nil
	}

	courseTitle := "your course"
	if payment.Course != nil {
		courseTitle = payment.Course.Title
	}

	subject := "Payment failed: " + courseTitle
	body := fmt.Sprintf(`
		<h2>Hello, %s!</h2>
		<p>Unfortunately your payment for "%s" did not complete.</p>
		<p>%s</p>
		<p>Please try again or contact support.</p>
	`, payment.Student.FullName(), courseTitle, reason)

	if err := SendEmail(payment.Student.Email, subject, body); err != nil {
		return err
	}
	LogInfo("Sent payment failure email to %s", payment.Student.Email)
	return nil
}

// SendLeadNotificationEmail tells an administrator about a freshly
// captured lead.
func SendLeadNotificationEmail(admin *models.User, lead *models.Lead) error {
	if admin.Email == "" {
		return nil
	}

	course := "Not specified"
	if lead.InterestedCourse != nil {
		course = lead.InterestedCourse.Title
	}
	phone := lead.Phone
	if phone == "" {
		phone = "Not specified"
	}

	subject := "New lead: " + lead.FullName()
	body := fmt.Sprintf(`
		<h2>Hello, %s!</h2>
		<p>A new lead has arrived:</p>
		<ul>
			<li>Name: %s</li>
			<li>Email: %s</li>
			<li>Phone: %s</li>
			<li>Interested course: %s</li>
			<li>Source: %s</li>
		</ul>
		<p>Please contact the prospect as soon as possible.</p>
	`, admin.FullName(), lead.FullName(), lead.Email, phone, course, lead.Source)

	return SendEmail(admin.Email, subject, body)
}

// SendTicketNotificationEmail tells a recipient about a new message in a
// support ticket thread.
func SendTicketNotificationEmail(recipient *models.User, ticket *models.SupportTicket, preview string) error {
	if recipient.Email == "" {
		return nil
	}

	subject := "New message in ticket: " + ticket.Title
	body := fmt.Sprintf(`
		<h2>Hello, %s!</h2>
		<p>There is a new message in the ticket "%s":</p>
		<blockquote>%s</blockquote>
		<p>Open the ticket to reply.</p>
	`, recipient.FullName(), ticket.Title, preview)

	return SendEmail(recipient.Email, subject, body)
}
