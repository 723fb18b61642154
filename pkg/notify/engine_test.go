package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pintpoint/realtimekit/pkg/notify"
	"github.com/pintpoint/realtimekit/pkg/store"
)

// MockFavorites for error injection in recipient resolution.
type MockFavorites struct {
	mock.Mock
}

func (m *MockFavorites) UsersByVenue(ctx context.Context, venueID string) ([]string, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockPreferences for error injection in the batched preference fetch.
type MockPreferences struct {
	mock.Mock
}

func (m *MockPreferences) ByUserIDs(ctx context.Context, userIDs []string) (map[string]store.Preferences, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]store.Preferences), args.Error(1)
}

// MockNotifications for error injection and write assertions.
type MockNotifications struct {
	mock.Mock
	store.Notifications
}

func (m *MockNotifications) CreateBatch(ctx context.Context, notifs []store.Notification) error {
	args := m.Called(ctx, notifs)
	return args.Error(0)
}

func memoryStores() (*store.MemoryStore, notify.Stores) {
	s := store.NewMemoryStore()
	return s, notify.Stores{
		Favorites:      s,
		EventInterests: s,
		Preferences:    s,
		Directory:      s,
		Notifications:  s,
	}
}

func listAll(t *testing.T, s *store.MemoryStore, userID string) []store.Notification {
	t.Helper()
	notifs, err := s.List(context.Background(), userID, store.ListOptions{})
	require.NoError(t, err)
	return notifs
}

func TestNotifyVenueUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("preference gating keeps only opted-in favoriters", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetVenueName("v1", "The Thirsty Goat")
		s.AddFavorite("userA", "v1")
		s.AddFavorite("userB", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", VenueUpdates: true})
		s.SetPreferences(store.Preferences{UserID: "userB", VenueUpdates: false})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, ""))

		recordsA := listAll(t, s, "userA")
		require.Len(t, recordsA, 1)
		assert.Equal(t, string(notify.CategoryVenueHoursUpdate), recordsA[0].Type)
		assert.Equal(t, "The Thirsty Goat updated their hours", recordsA[0].Content)
		assert.Equal(t, "v1", recordsA[0].RelatedEntityID)
		assert.Equal(t, "venue", recordsA[0].RelatedEntityType)

		assert.Empty(t, listAll(t, s, "userB"), "opted-out user must receive nothing")
	})

	t.Run("kitchen hours use the kitchen category under the same flag", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetVenueName("v1", "Barrel House")
		s.AddFavorite("userA", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", VenueUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyVenueUpdate(ctx, "v1", notify.KitchenHours, ""))

		records := listAll(t, s, "userA")
		require.Len(t, records, 1)
		assert.Equal(t, string(notify.CategoryKitchenHoursUpdate), records[0].Type)
		assert.Equal(t, "Barrel House updated their kitchen hours", records[0].Content)
	})

	t.Run("user without preference row is opted out", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetVenueName("v1", "Barrel House")
		s.AddFavorite("userA", "v1")

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, ""))

		assert.Empty(t, listAll(t, s, "userA"))
	})

	t.Run("missing display name falls back without aborting", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.AddFavorite("userA", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", VenueUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, ""))

		records := listAll(t, s, "userA")
		require.Len(t, records, 1)
		assert.Equal(t, "A venue you favorited updated their hours", records[0].Content)
	})

	t.Run("explicit content is used verbatim", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.AddFavorite("userA", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", VenueUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, "Now open late on weekends"))

		records := listAll(t, s, "userA")
		require.Len(t, records, 1)
		assert.Equal(t, "Now open late on weekends", records[0].Content)
	})
}

func TestNotifyHappyHourAndDailySpecial(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("happy hour gated by its own flag", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetVenueName("v1", "Hop Yard")
		s.AddFavorite("userA", "v1")
		s.AddFavorite("userB", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", HappyHourUpdates: true})
		s.SetPreferences(store.Preferences{UserID: "userB", VenueUpdates: true}) // wrong flag

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyHappyHourUpdate(ctx, "v1", ""))

		records := listAll(t, s, "userA")
		require.Len(t, records, 1)
		assert.Equal(t, string(notify.CategoryHappyHoursUpdate), records[0].Type)
		assert.Equal(t, "Hop Yard updated their happy hour", records[0].Content)

		assert.Empty(t, listAll(t, s, "userB"))
	})

	t.Run("daily special gated by its own flag", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetVenueName("v1", "Hop Yard")
		s.AddFavorite("userA", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", DailySpecialUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyDailySpecialUpdate(ctx, "v1", ""))

		records := listAll(t, s, "userA")
		require.Len(t, records, 1)
		assert.Equal(t, string(notify.CategoryDailySpecialUpdate), records[0].Type)
	})
}

func TestNotifyEventUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("updated event unions favoriters and interested without duplicates", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetVenueName("v1", "Hop Yard")
		s.AddFavorite("userA", "v1")
		s.AddEventInterest("userA", "e1")
		s.AddEventInterest("userC", "e1")
		s.SetPreferences(store.Preferences{UserID: "userA", EventUpdates: true})
		s.SetPreferences(store.Preferences{UserID: "userC", EventUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyEventUpdate(ctx, "e1", "v1", notify.EventUpdated, ""))

		recordsA := listAll(t, s, "userA")
		require.Len(t, recordsA, 1, "user qualifying through both sources gets exactly one record")
		assert.Equal(t, string(notify.CategoryEventUpdated), recordsA[0].Type)
		assert.Equal(t, "e1", recordsA[0].RelatedEntityID)
		assert.Equal(t, "event", recordsA[0].RelatedEntityType)

		recordsC := listAll(t, s, "userC")
		require.Len(t, recordsC, 1)
	})

	t.Run("created event reaches favoriters only", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetVenueName("v1", "Hop Yard")
		s.AddFavorite("userA", "v1")
		s.AddEventInterest("userC", "e1") // interest exists but event is new
		s.SetPreferences(store.Preferences{UserID: "userA", EventUpdates: true})
		s.SetPreferences(store.Preferences{UserID: "userC", EventUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyEventUpdate(ctx, "e1", "v1", notify.EventCreated, ""))

		require.Len(t, listAll(t, s, "userA"), 1)
		assert.Empty(t, listAll(t, s, "userC"))
	})
}

func TestNotifyClaimStatusUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("approved claim notifies the owner", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetPreferences(store.Preferences{UserID: "userU", ClaimUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyClaimStatusUpdate(ctx, "userU", "c1", notify.ClaimApproved, "Ironworks Brewing"))

		records := listAll(t, s, "userU")
		require.Len(t, records, 1)
		assert.Equal(t, string(notify.CategoryClaimApproved), records[0].Type)
		assert.Equal(t, "Your claim for Ironworks Brewing has been approved! You can now manage this brewery.", records[0].Content)
		assert.Equal(t, "c1", records[0].RelatedEntityID)
		assert.Equal(t, "claim", records[0].RelatedEntityType)
	})

	t.Run("rejected claim uses rejection wording", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetPreferences(store.Preferences{UserID: "userU", ClaimUpdates: true})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyClaimStatusUpdate(ctx, "userU", "c1", notify.ClaimRejected, "Ironworks Brewing"))

		records := listAll(t, s, "userU")
		require.Len(t, records, 1)
		assert.Equal(t, string(notify.CategoryClaimRejected), records[0].Type)
		assert.Equal(t, "Your claim for Ironworks Brewing was not approved.", records[0].Content)
	})

	t.Run("owner with claim updates disabled receives nothing", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.SetPreferences(store.Preferences{UserID: "userU", ClaimUpdates: false})

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyClaimStatusUpdate(ctx, "userU", "c1", notify.ClaimRejected, "Ironworks Brewing"))

		assert.Empty(t, listAll(t, s, "userU"))
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		t.Parallel()

		_, stores := memoryStores()
		engine := notify.NewEngine(stores)
		err := engine.NotifyClaimStatusUpdate(ctx, "userU", "c1", notify.ClaimStatus("pending"), "Ironworks Brewing")
		assert.ErrorIs(t, err, notify.ErrUnknownClaimStatus)
	})
}

func TestFanOutErrorHandling(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("recipient resolution failure aborts the fan-out", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		favorites := new(MockFavorites)
		favorites.On("UsersByVenue", mock.Anything, "v1").Return(nil, errors.New("connection refused"))
		stores.Favorites = favorites

		engine := notify.NewEngine(stores)
		err := engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, "x")
		require.ErrorIs(t, err, notify.ErrResolveRecipients)

		assert.Empty(t, listAll(t, s, "userA"))
		favorites.AssertExpectations(t)
	})

	t.Run("preference fetch failure aborts the fan-out", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.AddFavorite("userA", "v1")

		prefs := new(MockPreferences)
		prefs.On("ByUserIDs", mock.Anything, []string{"userA"}).Return(nil, errors.New("timeout"))
		stores.Preferences = prefs

		engine := notify.NewEngine(stores)
		err := engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, "x")
		require.ErrorIs(t, err, notify.ErrFetchPreferences)

		assert.Empty(t, listAll(t, s, "userA"))
		prefs.AssertExpectations(t)
	})

	t.Run("write failure is reported but never retried", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.AddFavorite("userA", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", VenueUpdates: true})

		notifications := new(MockNotifications)
		notifications.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
		stores.Notifications = notifications

		engine := notify.NewEngine(stores)
		err := engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, "x")
		require.ErrorIs(t, err, notify.ErrWriteNotifications)

		notifications.AssertExpectations(t)
		notifications.AssertNumberOfCalls(t, "CreateBatch", 1)
	})

	t.Run("zero surviving candidates issues no write", func(t *testing.T) {
		t.Parallel()

		_, stores := memoryStores()
		notifications := new(MockNotifications)
		stores.Notifications = notifications

		engine := notify.NewEngine(stores)

		// No favoriters at all.
		require.NoError(t, engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, "x"))
		notifications.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("all candidates filtered out issues no write", func(t *testing.T) {
		t.Parallel()

		s, stores := memoryStores()
		s.AddFavorite("userA", "v1")
		s.SetPreferences(store.Preferences{UserID: "userA", VenueUpdates: false})

		notifications := new(MockNotifications)
		stores.Notifications = notifications

		engine := notify.NewEngine(stores)
		require.NoError(t, engine.NotifyVenueUpdate(ctx, "v1", notify.VenueHours, "x"))
		notifications.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})
}
