package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/athebyme/affiliate-storefront/pkg/errors"
	"github.com/athebyme/affiliate-storefront/pkg/interfaces"
	"github.com/athebyme/affiliate-storefront/pkg/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/logger"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/adapters/messaging"
	wp "github.com/athebyme/affiliate-storefront/services/content-service/internal/domain/models"
	"github.com/athebyme/affiliate-storefront/services/content-service/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const clickTopic = "affiliate-clicks"

func widgetItem() *models.CatalogItem {
	return &models.CatalogItem{
		ID:   "cHJvZHVjdDo5MDAw",
		Slug: "widget-9000",
		Commercial: &models.CommercialMetadata{
			Price:         "49.99",
			AffiliateLink: "https://partner.example.com/widget-9000",
		},
	}
}

func TestClickTracker_PublishesEvent(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("GetCatalogItemBySlug", mock.Anything, "widget-9000").Return(widgetItem(), nil)

	var published messaging.ClickEvent
	bus := &mockMessaging{}
	bus.On("PublishWithKey", mock.Anything, clickTopic, "widget-9000", mock.Anything).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(3).([]byte), &published))
		}).
		Return(nil)

	tracker := NewClickTracker(gateway, bus, clickTopic, logger.NewNopLogger())
	dest, err := tracker.Track(context.Background(), ClickRequest{
		Slug:      "widget-9000",
		Referrer:  "https://blog.example.com/",
		UserAgent: "Mozilla/5.0",
		RemoteIP:  "203.0.113.7",
		RequestID: "req-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://partner.example.com/widget-9000", dest)

	bus.AssertExpectations(t)
	assert.Equal(t, "widget-9000", published.Slug)
	assert.Equal(t, dest, published.Destination)
	assert.Equal(t, "req-1", published.RequestID)
	assert.Len(t, published.IPHash, ipHashLength)
	assert.NotContains(t, published.IPHash, "203.0.113.7")
	_, err = uuid.Parse(published.ID)
	assert.NoError(t, err)
}

func TestClickTracker_BotIsNotPublished(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("GetCatalogItemBySlug", mock.Anything, "widget-9000").Return(widgetItem(), nil)
	bus := &mockMessaging{}

	tracker := NewClickTracker(gateway, bus, clickTopic, logger.NewNopLogger())
	dest, err := tracker.Track(context.Background(), ClickRequest{Slug: "widget-9000", Bot: true})
	require.NoError(t, err)
	assert.NotEmpty(t, dest)
	bus.AssertNotCalled(t, "PublishWithKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClickTracker_PublishFailureStillRedirects(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("GetCatalogItemBySlug", mock.Anything, "widget-9000").Return(widgetItem(), nil)
	bus := &mockMessaging{}
	bus.On("PublishWithKey", mock.Anything, clickTopic, "widget-9000", mock.Anything).Return(errors.New("broker down"))

	tracker := NewClickTracker(gateway, bus, clickTopic, logger.NewNopLogger())
	dest, err := tracker.Track(context.Background(), ClickRequest{Slug: "widget-9000"})
	require.NoError(t, err)
	assert.Equal(t, "https://partner.example.com/widget-9000", dest)
}

func TestClickTracker_WithoutMessaging(t *testing.T) {
	gateway := &mockGateway{}
	gateway.On("GetCatalogItemBySlug", mock.Anything, "widget-9000").Return(widgetItem(), nil)

	tracker := NewClickTracker(gateway, nil, clickTopic, logger.NewNopLogger())
	dest, err := tracker.Track(context.Background(), ClickRequest{Slug: "widget-9000"})
	require.NoError(t, err)
	assert.NotEmpty(t, dest)
}

func TestClickTracker_Errors(t *testing.T) {
	noLink := widgetItem()
	noLink.Commercial = nil

	tests := []struct {
		name string
		item *models.CatalogItem
		err  error
		want error
	}{
		{name: "not found", want: utils.ErrItemNotFound},
		{name: "no affiliate link", item: noLink, want: utils.ErrNoAffiliateLink},
		{name: "backend down", err: apperrors.ErrBackendUnavailable, want: apperrors.ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &mockGateway{}
			gateway.On("GetCatalogItemBySlug", mock.Anything, "widget-9000").Return(tt.item, tt.err)

			tracker := NewClickTracker(gateway, &mockMessaging{}, clickTopic, logger.NewNopLogger())
			dest, err := tracker.Track(context.Background(), ClickRequest{Slug: "widget-9000"})
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, dest)
		})
	}
}

func clickMessage(t *testing.T, event messaging.ClickEvent) *interfaces.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return &interfaces.Message{ID: "m1", Topic: clickTopic, Value: payload}
}

func TestClickRecorder_SavesInTransaction(t *testing.T) {
	repo := &memoryClicks{}
	txm := &inlineTx{}
	recorder := NewClickRecorder(repo, txm, logger.NewNopLogger())

	event := messaging.ClickEvent{
		ID:          uuid.New().String(),
		Slug:        "widget-9000",
		Destination: "https://partner.example.com/widget-9000",
		ClickedAt:   time.Now().UTC(),
	}
	require.NoError(t, recorder.HandleMessage(context.Background(), clickMessage(t, event)))

	assert.Equal(t, 1, txm.calls)
	require.Len(t, repo.saved, 1)
	assert.Equal(t, event.ID, repo.saved[0].ID)
	assert.Equal(t, "widget-9000", repo.saved[0].Slug)
}

func TestClickRecorder_DropsInvalidEvents(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "not json", payload: []byte("{")},
		{name: "id not uuid", payload: mustJSON(t, messaging.ClickEvent{ID: "1", Slug: "a", Destination: "https://x.example.com", ClickedAt: time.Now()})},
		{name: "no destination", payload: mustJSON(t, messaging.ClickEvent{ID: uuid.New().String(), Slug: "a", ClickedAt: time.Now()})},
		{name: "no time", payload: mustJSON(t, messaging.ClickEvent{ID: uuid.New().String(), Slug: "a", Destination: "https://x.example.com"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memoryClicks{}
			txm := &inlineTx{}
			recorder := NewClickRecorder(repo, txm, logger.NewNopLogger())

			err := recorder.HandleMessage(context.Background(), &interfaces.Message{ID: "m", Value: tt.payload})
			assert.NoError(t, err)
			assert.Zero(t, txm.calls)
			assert.Empty(t, repo.saved)
		})
	}
}

func TestClickRecorder_StorageErrorIsRetried(t *testing.T) {
	repo := &memoryClicks{err: errors.New("connection reset")}
	recorder := NewClickRecorder(repo, &inlineTx{}, logger.NewNopLogger())

	event := messaging.ClickEvent{
		ID:          uuid.New().String(),
		Slug:        "widget-9000",
		Destination: "https://partner.example.com/widget-9000",
		ClickedAt:   time.Now().UTC(),
	}
	assert.Error(t, recorder.HandleMessage(context.Background(), clickMessage(t, event)))
}

func TestClickStatsService_Defaults(t *testing.T) {
	repo := &memoryClicks{}
	svc := NewClickStatsService(repo)

	stats, err := svc.Stats(context.Background(), time.Time{}, 0)
	require.NoError(t, err)
	assert.NotNil(t, stats)
	assert.Equal(t, defaultStatsLimit, repo.limit)
	assert.WithinDuration(t, time.Now().Add(-defaultStatsWindow), repo.since, time.Minute)

	_, err = svc.Stats(context.Background(), time.Now(), 10_000)
	require.NoError(t, err)
	assert.Equal(t, maxStatsLimit, repo.limit)
}

func TestClickStatsService_Passthrough(t *testing.T) {
	repo := &memoryClicks{stats: []wp.ClickStats{{Slug: "widget-9000", Clicks: 3}}}
	stats, err := NewClickStatsService(repo).Stats(context.Background(), time.Now().Add(-time.Hour), 5)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(3), stats[0].Clicks)
	assert.Equal(t, 5, repo.limit)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
