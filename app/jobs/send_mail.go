// Package jobs holds the background jobs the API queues.
package jobs

import (
	"context"
	"fmt"

	"github.com/tiffinbox/tiffin/pkg/mail"
	"github.com/tiffinbox/tiffin/pkg/queue"
)

func init() {
	queue.Register("*jobs.SendMail", func() queue.Job { return &SendMail{} })
}

// SendMail renders one of the embedded mail templates and delivers it.
type SendMail struct {
	To       string            `json:"to"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

func (j *SendMail) Handle(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mail.To(j.To).Subject(j.Subject).Template(j.Template, j.Data).Send(); err != nil {
		return fmt.Errorf("send %s to %s: %w", j.Template, j.To, err)
	}
	return nil
}

// Activation is the mail carrying a sign-up code.
func Activation(email, code string) *SendMail {
	return &SendMail{
		To:       email,
		Subject:  "Activate your account",
		Template: "activation.html",
		Data:     map[string]string{"Email": email, "Code": code},
	}
}

// PasswordReset is the mail carrying a reset code.
func PasswordReset(email, code string) *SendMail {
	return &SendMail{
		To:       email,
		Subject:  "Reset your password",
		Template: "reset.html",
		Data:     map[string]string{"Email": email, "Code": code},
	}
}

// OrderStatus tells a customer their order moved to a new status.
func OrderStatus(email, name, orderID, restaurant, status, total string) *SendMail {
	return &SendMail{
		To:       email,
		Subject:  fmt.Sprintf("Order #%s is %s", orderID, status),
		Template: "order_status.html",
		Data: map[string]string{
			"OrderID":    orderID,
			"Name":       name,
			"Restaurant": restaurant,
			"Status":     status,
			"Total":      total,
		},
	}
}
