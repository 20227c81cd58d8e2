package apierr

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

var statusMessages = map[int]string{
	400: "The server cannot or will not process the request due to an apparent client error.",
	401: "Authentication is required and has failed or has not yet been provided.",
	403: "The request was valid, but the server is refusing action.",
	404: "The requested resource could not be found.",
	405: "A request method is not supported for the requested resource.",
	406: "The requested resource is capable of generating only content not acceptable according to the Accept headers sent in the request.",
	407: "The client must first authenticate itself with the proxy.",
	408: "The server timed out waiting for the request.",
	409: "The request could not be completed due to a conflict with the current state of the resource.",
	410: "The requested resource is no longer available at the server.",
	411: "The request did not specify the length of its content, which is required by the requested resource.",
	412: "The server does not meet one of the preconditions that the requester put on the request.",
	413: "The request is larger than the server is willing or able to process.",
	414: "The URI provided was too long for the server to process.",
	415: "The request entity has a media type which the server or resource does not support.",
	416: "The client has asked for a portion of the file, but the server cannot supply that portion.",
	417: "The server cannot meet the requirements of the Expect request-header field.",
	421: "The request was directed at a server that is not able to produce a response.",
	422: "The request was well-formed but was unable to be followed due to semantic errors.",
	426: "The client should switch to a different protocol.",
	428: "The origin server requires the request to be conditional.",
	429: "The user has sent too many requests in a given amount of time.",
	431: "The server is unwilling to process the request because either an individual header field, or all the header fields collectively, are too large.",
	500: "The server encountered an unexpected condition which prevented it from fulfilling the request.",
	501: "The server does not support the functionality required to fulfill the request.",
	502: "The server was acting as a gateway or proxy and received an invalid response from the upstream server.",
	503: "The server is unable to handle the request at this time.",
	504: "The server was acting as a gateway or proxy and did not receive a timely response from the upstream server.",
	505: "The server does not support the HTTP protocol version used in the request.",
	506: "Transparent content negotiation for the request results in a circular reference.",
	509: "The server has exceeded the bandwidth specified by the server administrator.",
	510: "Further extensions to the request are required for the server to fulfill it.",
	511: "The client needs to authenticate to gain network access.",
}

// StatusMessage returns the human readable text for an HTTP status code.
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "An unknown error related to the server response was detected."
}

// StatusError is the raw exchange attached as cause to server errors.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// FromResponse maps a completed but unsuccessful exchange to a server error.
func FromResponse(status int, body []byte) *Error {
	code := fmt.Sprintf("http_%d", status)
	switch status {
	case 401:
		code = CodeUnauthorized
	case 403:
		code = CodeForbidden
	}
	e := Wrap(KindServer, SeverityCritical, code, StatusMessage(status), &StatusError{
		Status: status,
		Body:   strings.TrimSpace(string(body)),
	})
	e.status = status
	return e
}

// FromTransport maps a failure where no response was obtained. host is used
// in the message only.
func FromTransport(err error, host string) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return Wrap(KindTransport, SeverityCritical, CodeCanceled,
			"The operation was canceled before it was finished.", err)
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return Wrap(KindTransport, SeverityCritical, CodeTimeout,
			fmt.Sprintf("The connection to the server at %s timed out.", host), err)
	case isCertificateError(err):
		return Wrap(KindTransport, SeverityFatal, CodeTLS,
			"The server certificate was rejected and the encrypted channel could not be established.", err)
	case isTLSError(err):
		return Wrap(KindTransport, SeverityCritical, CodeTLS,
			"The SSL/TLS handshake failed and the encrypted channel could not be established.", err)
	case isInvalidURL(err):
		return Wrap(KindTransport, SeverityFatal, CodeInvalidURL,
			"The request URL is not valid for this protocol.", err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return Wrap(KindTransport, SeverityCritical, CodeConnection,
			fmt.Sprintf("The remote host name %s was not found.", host), err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return Wrap(KindTransport, SeverityCritical, CodeConnection,
			fmt.Sprintf("The remote server at %s refused the connection.", host), err)
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return Wrap(KindTransport, SeverityCritical, CodeConnection,
			fmt.Sprintf("The remote server at %s closed the connection prematurely, before the entire reply was received and processed.", host), err)
	}
	return Wrap(KindTransport, SeverityCritical, CodeConnection,
		"An unknown network-related error was detected.", err)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isCertificateError(err error) bool {
	var (
		verifyErr   *tls.CertificateVerificationError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		invalidCert x509.CertificateInvalidError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert)
}

func isTLSError(err error) bool {
	var recordErr tls.RecordHeaderError
	var alertErr tls.AlertError
	return errors.As(err, &recordErr) || errors.As(err, &alertErr)
}

func isInvalidURL(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unsupported protocol scheme") ||
		strings.Contains(msg, "no Host in request URL")
}
