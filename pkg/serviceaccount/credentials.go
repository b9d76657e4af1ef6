// Package serviceaccount loads Google service-account credentials for Drive and Sheets.
package serviceaccount

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes needed by the evidence store and the task table.
var Scopes = []string{
	sheets.SpreadsheetsScope,
	drive.DriveFileScope,
}

// ClientOption reads the key file at path and returns an option usable by any
// google.golang.org/api service constructor.
func ClientOption(ctx context.Context, path string) (option.ClientOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("service account file not found: %s: %w", path, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}
	return option.WithCredentials(creds), nil
}
