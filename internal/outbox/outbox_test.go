package outbox

import (
	"errors"
	"testing"
)

func TestSendAssignsPerChatIDs(t *testing.T) {
	o := New()
	if id := o.Send(1, Content{Text: "a"}); id != 1 {
		t.Errorf("first id in chat 1 = %d, want 1", id)
	}
	if id := o.Send(1, Content{Text: "b"}); id != 2 {
		t.Errorf("second id in chat 1 = %d, want 2", id)
	}
	if id := o.Send(2, Content{Text: "c"}); id != 1 {
		t.Errorf("first id in chat 2 = %d, want 1", id)
	}
	if n := o.Pending(1); n != 2 {
		t.Errorf("Pending(1) = %d, want 2", n)
	}
}

func TestEditPendingRewritesInPlace(t *testing.T) {
	o := New()
	id := o.Send(1, Content{Text: "Question 1/2", Buttons: []Button{{Text: "x", Data: "answer_0"}}})
	if err := o.Edit(1, id, Content{Text: "Question 2/2"}); err != nil {
		t.Fatal(err)
	}
	msgs := o.Drain(1)
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Text != "Question 2/2" || msgs[0].Edit || len(msgs[0].Buttons) != 0 {
		t.Errorf("message = %+v, want rewritten new message", msgs[0])
	}
}

func TestEditDeliveredQueuesEdit(t *testing.T) {
	o := New()
	id := o.Send(1, Content{Text: "first"})
	o.Drain(1)

	if err := o.Edit(1, id, Content{Text: "second"}); err != nil {
		t.Fatal(err)
	}
	msgs := o.Drain(1)
	if len(msgs) != 1 || !msgs[0].Edit || msgs[0].ID != id || msgs[0].Text != "second" {
		t.Errorf("Drain = %+v, want one edit of %d", msgs, id)
	}
}

func TestEditUnknown(t *testing.T) {
	o := New()
	o.Send(1, Content{Text: "a"})
	for _, id := range []int{0, -1, 2} {
		if err := o.Edit(1, id, Content{}); !errors.Is(err, ErrUnknownMessage) {
			t.Errorf("Edit(%d) = %v, want ErrUnknownMessage", id, err)
		}
	}
	if err := o.Edit(2, 1, Content{}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("Edit in another chat = %v, want ErrUnknownMessage", err)
	}
}

func TestDrainEmpty(t *testing.T) {
	o := New()
	msgs := o.Drain(5)
	if msgs == nil || len(msgs) != 0 {
		t.Errorf("Drain(empty) = %#v, want empty non-nil slice", msgs)
	}
}

func TestButtonsAreCopied(t *testing.T) {
	o := New()
	buttons := []Button{{Text: "a"}}
	o.Send(1, Content{Buttons: buttons})
	buttons[0].Text = "changed"
	if got := o.Drain(1)[0].Buttons[0].Text; got != "a" {
		t.Errorf("button text = %q, want a", got)
	}
}
