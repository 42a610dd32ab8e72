package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", retryable: true},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "state transition disallowed", detailsOK: true},
		{code: CodeBusy, status: http.StatusLocked, publicMsg: "resource is being modified, retry shortly", retryable: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "too many requests", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapAndAs(t *testing.T) {
	cause := stdErrors.New("db down")
	wrapped := Wrap(CodeDependency, cause, "load subscription")
	outer := fmt.Errorf("toggle pause: %w", wrapped)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error in chain")
	}
	if typed.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", typed.Code())
	}
	if !stdErrors.Is(outer, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if !IsCode(outer, CodeDependency) {
		t.Fatal("expected IsCode to match dependency")
	}
	if IsCode(stdErrors.New("plain"), CodeDependency) {
		t.Fatal("plain errors carry no code")
	}
}

func TestSentinelMatching(t *testing.T) {
	sentinel := New(CodeStateConflict, "no pause days left")
	err := fmt.Errorf("pause: %w", New(CodeStateConflict, "no pause days left"))
	if !stdErrors.Is(err, sentinel) {
		t.Fatal("expected errors with same code and message to match")
	}
	if stdErrors.Is(err, New(CodeStateConflict, "other")) {
		t.Fatal("different message must not match")
	}
}

func TestWithDetailsOnNil(t *testing.T) {
	var e *Error
	if e.WithDetails("x") != nil {
		t.Fatal("expected nil passthrough")
	}
	if e.Code() != CodeInternal {
		t.Fatalf("nil error should report internal code, got %s", e.Code())
	}
}

func TestDumpExtractsPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "discount_codes_code_key", TableName: "discount_codes", Message: "duplicate key value"}
	err := Wrap(CodeConflict, pgErr, "create discount code")

	dump := Dump(err)
	if dump.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", dump.Code)
	}
	if dump.PG == nil || dump.PG.Code != "23505" || dump.PG.Constraint != "discount_codes_code_key" {
		t.Fatalf("unexpected pg fields: %+v", dump)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected chain of 2, got %v", dump.Chain)
	}
	fields := dump.Fields()
	if fields["pg_table"] != "discount_codes" {
		t.Fatalf("expected pg_table field, got %v", fields["pg_table"])
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || d.Chain != nil {
		t.Fatalf("expected empty dump, got %+v", d)
	}
	if d := Dump(stdErrors.New("plain")); d.PG != nil {
		t.Fatalf("plain errors carry no pg fields, got %+v", d.PG)
	}
	if _, ok := Dump(stdErrors.New("plain")).Fields()["pg_code"]; ok {
		t.Fatal("pg fields should be omitted")
	}
}

func TestDumpReadsLibPQErrors(t *testing.T) {
	err := fmt.Errorf("delete area: %w", &pq.Error{Code: "23503", Constraint: "subscriptions_area_id_fkey", Table: "subscriptions"})
	dump := Dump(err)
	if dump.PG == nil || dump.PG.Code != "23503" || dump.PG.Table != "subscriptions" {
		t.Fatalf("unexpected pg fields: %+v", dump.PG)
	}
}

func TestPublicView(t *testing.T) {
	view := PublicView(New(CodeStateConflict, "no pause days left").WithDetails(map[string]int{"remaining": 0}))
	if view.Status != http.StatusUnprocessableEntity || view.Message != "no pause days left" || view.Details == nil {
		t.Fatalf("unexpected view %+v", view)
	}

	view = PublicView(Wrap(CodeDependency, stdErrors.New("dial tcp 10.0.0.5:5432"), "load subscriber"))
	if view.Message != "dependency unavailable" {
		t.Fatalf("dependency messages must stay generic, got %q", view.Message)
	}

	view = PublicView(New(CodeNotFound, "meal not found").WithDetails("hidden"))
	if view.Details != nil {
		t.Fatalf("details not allowed for not found, got %v", view.Details)
	}

	view = PublicView(stdErrors.New("boom"))
	if view.Code != CodeInternal || view.Status != http.StatusInternalServerError || view.Message != "internal server error" {
		t.Fatalf("untyped error should map to internal, got %+v", view)
	}
}
