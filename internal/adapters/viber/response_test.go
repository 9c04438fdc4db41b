package viber

import (
	"errors"
	"testing"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
	"github.com/decisiontelecom/messaging-gateway-go/internal/transport"
)

func TestClassifyRequiresAllFourMarkers(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "message id", body: `{"message_id":429}`},
		{name: "receipt", body: `{"message_id":429,"status":1}`},
		{name: "three markers", body: `{"name":"x","message":"y","code":1}`},
		{name: "error body", body: invalidSourceBody, wantErr: true},
	}
	for _, tc := range cases {
		err := classify("op", &transport.Response{StatusCode: 200, Body: tc.body})
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: classify() = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

// A success body containing every marker word is read as an error body.
func TestClassifyMarkerFalsePositive(t *testing.T) {
	body := `{"message_id":1,"status":1,"note":"name message code"}`

	err := classify("status", &transport.Response{StatusCode: 200, Body: body})
	var viberErr *Error
	if !errors.As(err, &viberErr) {
		t.Fatalf("expected viber error, got %v", err)
	}
	if viberErr.Status != 1 {
		t.Fatalf("expected status field to be parsed, got %+v", viberErr)
	}
}

func TestClassifyMalformedErrorBody(t *testing.T) {
	body := `name message code status`

	err := classify("send", &transport.Response{StatusCode: 200, Body: body})
	if !errors.Is(err, common.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestClassifyHTTPStatus(t *testing.T) {
	err := classify("send", &transport.Response{StatusCode: 503, StatusText: "Service Unavailable"})
	var viberErr *Error
	if !errors.As(err, &viberErr) || viberErr.Name != "Service Unavailable" || viberErr.Status != 503 {
		t.Fatalf("unexpected error %v", err)
	}
	if !errors.Is(err, common.ErrHTTPStatus) || !errors.Is(err, common.ErrDomain) {
		t.Fatalf("expected both domain and http status matches")
	}
	if err.Error() != "viber error: Service Unavailable (status 503)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestEncodeMessageRejectsForeignTypes(t *testing.T) {
	if _, err := encodeMessage("text"); err == nil {
		t.Fatalf("expected error for unsupported message")
	}
}

func TestClassifyErrorBodyWithNumericStrings(t *testing.T) {
	body := `{"name":"Invalid Parameter: source_addr","message":"Empty parameter or parameter validation error","code":"1","status":"400"}`

	err := classify("send", &transport.Response{StatusCode: 200, Body: body})
	var viberErr *Error
	if !errors.As(err, &viberErr) {
		t.Fatalf("expected viber error, got %T: %v", err, err)
	}
	if viberErr.Code != 1 || viberErr.Status != 400 {
		t.Fatalf("unexpected error %+v", viberErr)
	}
	if !errors.Is(err, common.ErrDomain) || errors.Is(err, common.ErrProtocol) {
		t.Fatalf("expected a domain error only, got %v", err)
	}
}

func TestClassifyErrorBodyWithNonNumericCode(t *testing.T) {
	body := `{"name":"x","message":"y","code":"one","status":400}`

	err := classify("send", &transport.Response{StatusCode: 200, Body: body})
	if !errors.Is(err, common.ErrProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}
