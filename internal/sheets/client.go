// Package sheets backs the catalog and the order log with a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/angelmondragon/atelier-bot/pkg/config"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Client talks to one spreadsheet.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
}

// New builds a Sheets client from the service-account settings. Extra options override them.
func New(ctx context.Context, cfg config.SheetsConfig, logg *logger.Logger, extra ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	opts := append(clientOptions(cfg), extra...)
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "spreadsheet_id", cfg.SpreadsheetID), "sheets client initialized")
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

func clientOptions(cfg config.SheetsConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.ApplicationCredentials) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.ApplicationCredentials))
	}
	return opts
}

// Ping reads the spreadsheet metadata to check the id and sharing.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return c.wrap(err, "read spreadsheet")
}

func (c *Client) wrap(err error, action string) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%s: spreadsheet %q not found, check the id: %w", action, c.spreadsheetID, err)
		case http.StatusForbidden:
			return fmt.Errorf("%s: spreadsheet %q is not shared with the service account: %w", action, c.spreadsheetID, err)
		}
	}
	return fmt.Errorf("%s: %w", action, err)
}
