package services

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/openlot/dealership-backend/internal/config"
	"github.com/openlot/dealership-backend/internal/models"
)

// Notifier delivers a one-time code to a user out of band.
// Fire-and-forget: the OTP core assumes no delivery guarantee.
type Notifier interface {
	Deliver(user *models.User, purpose, code string) error
}

// LogNotifier writes codes to the application log. This is the default
// delivery channel for local development.
type LogNotifier struct{}

func (LogNotifier) Deliver(user *models.User, purpose, code string) error {
	log.Printf("[OTP] %s OTP for %s: %s", purpose, user.Email, code)
	return nil
}

// TwilioNotifier sends codes via SMS for users that have a phone number
// on file, falling back to the log otherwise.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioNotifier(cfg *config.Config) (*TwilioNotifier, error) {
	if !cfg.TwilioConfigured() {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &TwilioNotifier{client: client, from: cfg.TwilioFrom}, nil
}

func (t *TwilioNotifier) Deliver(user *models.User, purpose, code string) error {
	if user.Phone == "" {
		return LogNotifier{}.Deliver(user, purpose, code)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(user.Phone)
	params.SetBody(fmt.Sprintf("Your %s verification code is %s", purpose, code))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send OTP SMS: %v", err)
		return err
	}

	log.Printf("✅ OTP SMS sent! SID: %s", *resp.Sid)
	return nil
}
