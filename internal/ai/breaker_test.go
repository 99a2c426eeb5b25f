package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"onecore/internal/ai"
	"onecore/internal/port"
	"onecore/mocks"
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	next := new(mocks.MockCompleter)
	next.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("upstream down"))

	b := ai.NewBreaker("test", next, 2, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := b.Complete(context.Background(), port.CompletionRequest{})
		assert.EqualError(t, err, "upstream down")
	}

	_, err := b.Complete(context.Background(), port.CompletionRequest{})
	assert.ErrorIs(t, err, ai.ErrCircuitOpen)
	assert.Equal(t, "open", b.State())
	next.AssertNumberOfCalls(t, "Complete", 2)
}

func TestBreaker_CanceledCallerDoesNotTrip(t *testing.T) {
	next := new(mocks.MockCompleter)
	next.On("Complete", mock.Anything, mock.Anything).Return("", context.Canceled)

	b := ai.NewBreaker("test", next, 1, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := b.Complete(context.Background(), port.CompletionRequest{})
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	next := new(mocks.MockCompleter)
	next.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("fail")).Once()
	next.On("Complete", mock.Anything, mock.Anything).Return(`{"ok":true}`, nil)

	b := ai.NewBreaker("test", next, 1, 20*time.Millisecond)

	_, err := b.Complete(context.Background(), port.CompletionRequest{})
	require.Error(t, err)
	assert.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)

	text, err := b.Complete(context.Background(), port.CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)
	assert.Equal(t, "closed", b.State())
}

func TestSplitDataURI(t *testing.T) {
	mediaType, data, err := ai.SplitDataURI("data:image/jpeg;base64,/9j/ABA=")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediaType)
	assert.Equal(t, "/9j/ABA=", data)

	for _, bad := range []string{"image/jpeg;base64,AAA", "data:image/jpeg;base64", "data:image/jpeg,AAA"} {
		_, _, err := ai.SplitDataURI(bad)
		assert.Error(t, err, bad)
	}
}
