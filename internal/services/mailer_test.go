package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionsURL(t *testing.T) {
	url := DirectionsURL(52.52, 13.405)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=52.52,13.405", url)
}

func TestSOSAlertEmail(t *testing.T) {
	email := SOSAlertEmail("mom@example.com", "Alice", "alice@example.com", "", "SOS Emergency!", "https://app.example.com/track/abc")

	assert.Equal(t, "mom@example.com", email.To)
	assert.Equal(t, "SOS Alert from Alice (alice@example.com)", email.Subject)
	assert.Contains(t, email.Body, "Location: N/A")
	assert.Contains(t, email.Body, "SOS Emergency!")
	assert.Contains(t, email.Body, "https://app.example.com/track/abc")
}

func TestSOSAlertEmailOmitsTrackLineWhenEmpty(t *testing.T) {
	email := SOSAlertEmail("mom@example.com", "Alice", "alice@example.com", "Main St", "help", "")
	assert.NotContains(t, email.Body, "Track live location")
}

func TestHelperAlertEmail(t *testing.T) {
	lat, lng := 52.52, 13.405
	email := HelperAlertEmail("helper@example.com", "Bob", "Alice", "alice@example.com", &lat, &lng)

	assert.Equal(t, "helper@example.com", email.To)
	assert.Equal(t, "alice@example.com", email.ReplyTo)
	assert.Contains(t, email.Body, "destination=52.52,13.405")
}

func TestHelperAlertEmailMissingCoordinatesFallBack(t *testing.T) {
	email := HelperAlertEmail("helper@example.com", "Bob", "Alice", "alice@example.com", nil, nil)
	assert.Contains(t, email.Body, "destination=0,0")
}
