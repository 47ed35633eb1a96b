package pdf

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/revyh/glossify/internal/failure"
)

// PasswordCredentials contains the passwords for a PDF file.
type PasswordCredentials struct {
	UserPassword  string `json:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty"`
}

// Empty reports whether no password was supplied.
func (c *PasswordCredentials) Empty() bool {
	return c == nil || (c.UserPassword == "" && c.OwnerPassword == "")
}

// PasswordHandler removes encryption from input PDFs so the text reader sees
// plain objects.
type PasswordHandler struct {
	creds *PasswordCredentials
}

// NewPasswordHandler creates a new password handler. creds may be nil.
func NewPasswordHandler(creds *PasswordCredentials) *PasswordHandler {
	return &PasswordHandler{creds: creds}
}

// Prepare returns a path to an unencrypted copy of filename, or filename itself
// when it is not encrypted. The returned cleanup func is always non-nil.
func (h *PasswordHandler) Prepare(filename string) (string, func(), error) {
	noop := func() {}

	tempFileName, err := h.createTempFile()
	if err != nil {
		return "", noop, failure.Document("decrypt", "cannot create temporary file", err)
	}
	cleanup := func() { _ = os.Remove(tempFileName) }

	err = api.DecryptFile(filename, tempFileName, h.createDecryptionConfig())
	switch {
	case err == nil:
		return tempFileName, cleanup, nil
	case isNotEncryptedError(err):
		cleanup()
		return filename, noop, nil
	case IsPasswordError(err):
		cleanup()
		if h.creds.Empty() {
			return "", noop, failure.Document("decrypt", "document is encrypted; supply a password", err)
		}
		return "", noop, failure.Document("decrypt", "wrong password for encrypted document", err)
	default:
		cleanup()
		return "", noop, failure.Document("open", "not a readable PDF", err)
	}
}

// createDecryptionConfig creates a configuration with the provided credentials.
func (h *PasswordHandler) createDecryptionConfig() *model.Configuration {
	config := model.NewDefaultConfiguration()
	config.ValidationMode = model.ValidationRelaxed

	if h.creds != nil {
		config.UserPW = h.creds.UserPassword
		config.OwnerPW = h.creds.OwnerPassword
	}

	return config
}

// createTempFile creates a temporary file for the decrypted PDF.
func (h *PasswordHandler) createTempFile() (string, error) {
	tempFile, err := os.CreateTemp("", "glossify-decrypted-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	_ = tempFile.Close() // Close file handle, keep path
	return tempFile.Name(), nil
}

func isNotEncryptedError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "not encrypted")
}

// IsPasswordError checks if an error is related to password/encryption issues.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	var fe *failure.Error
	if errors.As(err, &fe) && fe.Err != nil {
		err = fe.Err
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "not encrypted") {
		return false
	}
	passwordKeywords := []string{
		"password",
		"encrypted",
		"decrypt",
		"authentication",
		"unauthorized",
		"invalid credentials",
	}

	for _, keyword := range passwordKeywords {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}

	return false
}
