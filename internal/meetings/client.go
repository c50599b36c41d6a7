package meetings

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/chandan91077/healthcare-booking-platform-sub001/internal/config"
)

// Details is the opaque value set returned by the meeting provider.
type Details struct {
	MeetingID string `json:"meetingId"`
	JoinURL   string `json:"joinUrl"`
	HostURL   string `json:"hostUrl"`
}

// Client talks to the external video-meeting provisioning service. When no
// API URL is configured it falls back to deterministic placeholder links, so
// the scheduling flows work without the integration being live.
type Client struct {
	http     *resty.Client
	provider string
	apiURL   string
	baseURL  string
	log      *zap.Logger
}

// New creates a meeting provisioning client from configuration.
func New(cfg config.MeetingConfig, log *zap.Logger) *Client {
	http := resty.New()
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}
	return &Client{
		http:     http,
		provider: cfg.Provider,
		apiURL:   cfg.APIURL,
		baseURL:  cfg.BaseURL,
		log:      log,
	}
}

// Provider returns the configured meeting provider name.
func (c *Client) Provider() string {
	return c.provider
}

type provisionRequest struct {
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Provision requests a meeting from the external provider. The returned URLs
// are stored as opaque values; reachability is never validated here.
func (c *Client) Provision(ctx context.Context, patientName, doctorName, date, timeOfDay string) (*Details, error) {
	if c.apiURL == "" {
		return nil, fmt.Errorf("meeting provider %q has no API URL configured", c.provider)
	}

	var details Details
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(provisionRequest{
			PatientName: patientName,
			DoctorName:  doctorName,
			Date:        date,
			Time:        timeOfDay,
		}).
		SetResult(&details).
		Post(c.apiURL + "/meetings")
	if err != nil {
		return nil, fmt.Errorf("provision meeting: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("provision meeting: provider returned %s", resp.Status())
	}
	return &details, nil
}

// Placeholder synthesizes a deterministic stand-in meeting from the
// appointment id. It carries no uniqueness guarantee beyond the id suffix.
func (c *Client) Placeholder(appointmentID string) Details {
	return Details{
		MeetingID: appointmentID,
		JoinURL:   fmt.Sprintf("%s/%s/join/%s", c.baseURL, c.provider, appointmentID),
		HostURL:   fmt.Sprintf("%s/%s/host/%s", c.baseURL, c.provider, appointmentID),
	}
}
