package nb

import (
	"errors"
	"fmt"
	"testing"
)

func busyThen(blocks int, result error) (op func() error, calls *int) {
	calls = new(int)
	return func() error {
		*calls++
		if *calls <= blocks {
			return ErrWouldBlock
		}
		return result
	}, calls
}

func TestBlockPollsThrough(t *testing.T) {
	op, calls := busyThen(3, nil)
	if err := Block(op); err != nil {
		t.Fatal(err)
	}
	if *calls != 4 {
		t.Errorf("polled %d times, want 4", *calls)
	}
}

func TestBlockReturnsHardError(t *testing.T) {
	fault := errors.New("program verify failed")
	op, calls := busyThen(2, fault)
	if err := Block(op); !errors.Is(err, fault) {
		t.Fatalf("err = %v, want the device fault", err)
	}
	if *calls != 3 {
		t.Errorf("polled %d times, want 3", *calls)
	}
}

func TestBlockSeesWrappedSentinel(t *testing.T) {
	calls := 0
	err := Block(func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("bus busy: %w", ErrWouldBlock)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Errorf("polled %d times, want 3", calls)
	}
}

func TestBlockNGivesUp(t *testing.T) {
	op, calls := busyThen(1000, nil)
	err := BlockN(10, op)
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("err = %v, want ErrWouldBlock", err)
	}
	if *calls != 10 {
		t.Errorf("polled %d times, want 10", *calls)
	}
}

func TestBlockNZero(t *testing.T) {
	op, calls := busyThen(0, nil)
	if err := BlockN(0, op); !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("err = %v, want ErrWouldBlock", err)
	}
	if *calls != 0 {
		t.Errorf("op was called %d times, want 0", *calls)
	}
}

func TestAwait(t *testing.T) {
	calls := 0
	v, err := Await(func() (uint8, error) {
		calls++
		if calls < 5 {
			return 0, ErrWouldBlock
		}
		return 0xA5, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xA5 {
		t.Errorf("v = %#x, want 0xA5", v)
	}
}

func TestAwaitNGivesUp(t *testing.T) {
	calls := 0
	_, err := AwaitN(4, func() (uint8, error) {
		calls++
		return 0, ErrWouldBlock
	})
	if !errors.Is(err, ErrWouldBlock) {
		t.Fatalf("err = %v, want ErrWouldBlock", err)
	}
	if calls != 4 {
		t.Errorf("polled %d times, want 4", calls)
	}
}
