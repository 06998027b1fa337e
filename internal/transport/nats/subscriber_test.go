package nats

import (
	"errors"
	"testing"

	moderation "github.com/reshetovitsme/chat-guard/internal/modules/moderation/service"
	"github.com/stretchr/testify/assert"
)

type fakeInvalidator struct {
	applied []moderation.Invalidation
	err     error
}

func (f *fakeInvalidator) Apply(inv moderation.Invalidation) error {
	f.applied = append(f.applied, inv)
	return f.err
}

func TestHandleInvalidation(t *testing.T) {
	inv := &fakeInvalidator{}
	s := &Subscriber{invalidator: inv}

	s.handle([]byte(`{"chatId":-100,"groups":["ban_rules","rules"]}`))
	s.handle([]byte(`not json`))

	assert.Equal(t, []moderation.Invalidation{{ChatID: -100, Groups: []string{"ban_rules", "rules"}}}, inv.applied)
}

func TestHandleRejectedInvalidation(t *testing.T) {
	inv := &fakeInvalidator{err: errors.New("unknown group")}
	s := &Subscriber{invalidator: inv}

	s.handle([]byte(`{"chatId":-100,"groups":["bogus"]}`))

	assert.Len(t, inv.applied, 1)
}
