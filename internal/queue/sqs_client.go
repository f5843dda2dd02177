package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
)

// sendTimeout bounds the network call so a slow queue cannot stall a
// request indefinitely.
const sendTimeout = 10 * time.Second

// SendError is a classified dispatch failure. Retryable failures
// (throttling, timeouts, service unavailability) may be retried by the
// caller; everything else is permanent.
type SendError struct {
	Code      string
	Retryable bool
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("queue send failed (%s, retryable=%t): %v", e.Code, e.Retryable, e.Err)
}

// Unwrap exposes the transport error.
func (e *SendError) Unwrap() error { return e.Err }

// sqsAPI is the slice of the SQS client the dispatcher uses.
type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSDispatcher sends processing messages to AWS SQS.
type SQSDispatcher struct {
	client   sqsAPI
	queueURL string
}

// NewSQSDispatcher constructs a dispatcher over an SQS client and queue
// URL, both injected at startup.
func NewSQSDispatcher(client *sqs.Client, queueURL string) *SQSDispatcher {
	return &SQSDispatcher{client: client, queueURL: queueURL}
}

// SendProcessingMessage validates the message and sends it. Validation
// failures return a *ValidationError without touching the network; send
// failures return a classified *SendError.
func (d *SQSDispatcher) SendProcessingMessage(ctx context.Context, msg ProcessingMessage) (string, error) {
	payload, err := Validate(msg)
	if err != nil {
		return "", err
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	out, err := d.client.SendMessage(sendCtx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(d.queueURL),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return "", classifySendError(err)
	}
	if out.MessageId == nil {
		return "", &SendError{Code: "EMPTY_MESSAGE_ID", Retryable: false, Err: errors.New("queue returned no message id")}
	}
	return *out.MessageId, nil
}

// retryableCodes are transport-level conditions worth retrying.
var retryableCodes = map[string]struct{}{
	"ThrottlingException":           {},
	"Throttling":                    {},
	"RequestThrottled":              {},
	"TooManyRequestsException":      {},
	"ServiceUnavailable":            {},
	"ServiceUnavailableException":   {},
	"InternalError":                 {},
	"InternalServiceError":          {},
	"RequestTimeout":                {},
	"RequestTimeoutException":       {},
}

// fatalCodes are credential and signature failures; retrying the same
// request cannot succeed.
var fatalCodes = map[string]struct{}{
	"UnrecognizedClientException": {},
	"InvalidClientTokenId":        {},
	"SignatureDoesNotMatch":       {},
	"AccessDenied":                {},
	"AccessDeniedException":       {},
	"MissingAuthenticationToken":  {},
	"ExpiredToken":                {},
	"ExpiredTokenException":       {},
}

// classifySendError maps a transport failure to a SendError. Unknown
// codes default to non-retryable so callers never spin on a failure we
// do not understand.
func classifySendError(err error) *SendError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &SendError{Code: "TIMEOUT", Retryable: true, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &SendError{Code: "NETWORK_TIMEOUT", Retryable: true, Err: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if _, ok := retryableCodes[code]; ok {
			return &SendError{Code: code, Retryable: true, Err: err}
		}
		if _, ok := fatalCodes[code]; ok {
			return &SendError{Code: code, Retryable: false, Err: err}
		}
		// Throttling variants appear under multiple spellings.
		if strings.Contains(strings.ToLower(code), "throttl") {
			return &SendError{Code: code, Retryable: true, Err: err}
		}
		return &SendError{Code: code, Retryable: false, Err: err}
	}

	return &SendError{Code: "UNKNOWN", Retryable: false, Err: err}
}

var _ Dispatcher = (*SQSDispatcher)(nil)
