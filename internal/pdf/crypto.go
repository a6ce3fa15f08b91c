package pdf

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Credentials contains the passwords for a PDF file.
type Credentials struct {
	UserPassword  string `json:"user_password,omitempty"  yaml:"user_password,omitempty"`
	OwnerPassword string `json:"owner_password,omitempty" yaml:"owner_password,omitempty"`
}

// Empty reports whether no password is set.
func (c *Credentials) Empty() bool {
	return c == nil || (c.UserPassword == "" && c.OwnerPassword == "")
}

// configuration returns a pdfcpu configuration carrying the passwords.
func (c *Credentials) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if c == nil {
		return conf
	}
	if c.UserPassword != "" {
		conf.UserPW = c.UserPassword
	}
	if c.OwnerPassword != "" {
		conf.OwnerPW = c.OwnerPassword
	}
	return conf
}

// Validate checks that the credentials open filename.
func (c *Credentials) Validate(filename string) error {
	if err := api.ValidateFile(filename, c.configuration()); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}

// PasswordPrompt returns a formatted message for a protected document.
func PasswordPrompt(filename string) string {
	caser := cases.Title(language.English)
	return fmt.Sprintf("The PDF file %q is password protected. %s",
		filename,
		caser.String("please provide the password"))
}

// IsPasswordError checks if an error is related to password/encryption issues.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
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
