package compare

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNotImplemented(t *testing.T) {
	var c Comparer = NotImplemented{}

	got, err := c.Compare(context.Background(), Request{BankCode: 40, Year: 2024, Month: time.January})
	if !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Compare() error = %v, want ErrNotImplemented", err)
	}
	if got != nil {
		t.Errorf("Compare() = %v, want nil", got)
	}
}
