package results

import (
	"errors"
	"testing"
)

func TestOperationResult(t *testing.T) {
	ok := SuccessResult[int, error](42)
	if !ok.IsSuccess() || ok.IsFailure() {
		t.Fatalf("expected success only, got %+v", ok)
	}
	if *ok.Success != 42 {
		t.Errorf("expected 42, got %d", *ok.Success)
	}

	errBoom := errors.New("boom")
	failed := FailureResult[int, error](errBoom)
	if failed.IsSuccess() || !failed.IsFailure() {
		t.Fatalf("expected failure only, got %+v", failed)
	}
	if !errors.Is(*failed.Failure, errBoom) {
		t.Errorf("expected %v, got %v", errBoom, *failed.Failure)
	}

	var zero OperationResult[int, error]
	if zero.IsSuccess() || zero.IsFailure() {
		t.Errorf("zero value should be neither success nor failure")
	}
}
