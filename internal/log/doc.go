// Package log provides slog loggers that keep secrets and contact details
// out of log output.
//
// The SecureHandler wraps any slog.Handler:
//   - Secrets (API keys for validation services, tokens, passwords, auth
//     headers) are always replaced with MaskValue.
//   - Contact details are masked: attributes such as "email" or "phone",
//     and addresses embedded in free text or error messages. Masking keeps
//     enough to tell values apart (j***@example.com, ***67).
//
// Masking of contact details can be turned off for debugging:
//
//	logger := log.NewSecureLogger(os.Stderr, true, log.WithRevealPII(true))
//	slog.SetDefault(logger)
package log
