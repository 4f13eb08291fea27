package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"appointer/config"
	otelMocks "appointer/infras/otel/mocks"
	"appointer/internal/domains/booking/mocks"
	"appointer/internal/domains/booking/model"
	"appointer/internal/domains/booking/service"
	"appointer/internal/scheduling/calendar"
	"appointer/shared"
	"appointer/shared/cache"
	gDto "appointer/shared/dto"
	"appointer/shared/failure"
	"appointer/shared/lock"
	"appointer/shared/metrics"
)

func setupMock(t *testing.T) (*mocks.MockLedger, service.Booking, *miniredis.Miniredis) {
	t.Helper()

	ledger := mocks.NewMockLedger(gomock.NewController(t))

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	ot := otelMocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	svc := service.New(
		ledger, windows{}, hours{}, catalog{}, catalog{},
		lock.NewMemory(4), metrics.New(prometheus.NewRegistry()), &recorder{}, cfg,
		cache.NewRedisCache(client, ot), ot,
	)

	return ledger, svc, server
}

func stored(id, customerID string) model.Booking {
	name := "Budi"

	return model.Booking{
		ID:              id,
		CustomerID:      customerID,
		CustomerName:    &name,
		ServiceName:     "checkup",
		Date:            calendar.NewDate(2099, time.June, 1),
		StartTime:       calendar.At(9, 0),
		DurationMinutes: 60,
		Status:          model.StatusConfirmed,
		PaymentStatus:   model.PaymentPending,
	}
}

func TestGet(t *testing.T) {
	t.Run("owner reads and the result is cached", func(t *testing.T) {
		ledger, svc, server := setupMock(t)
		ledger.EXPECT().Find(gomock.Any(), "b1").Return(stored("b1", customer.UserID), nil).Times(1)

		res, err := svc.Get(as(customer), "b1")
		require.NoError(t, err)
		assert.Equal(t, "Budi", res.CustomerName)
		assert.Equal(t, calendar.At(10, 0), res.EndTime)

		assert.Eventually(t, func() bool { return server.Exists("booking:get:b1") }, time.Second, 10*time.Millisecond)

		res, err = svc.Get(as(customer), "b1")
		require.NoError(t, err)
		assert.Equal(t, "b1", res.ID)
	})

	t.Run("cached booking is still owner-checked", func(t *testing.T) {
		ledger, svc, server := setupMock(t)
		ledger.EXPECT().Find(gomock.Any(), "b1").Return(stored("b1", customer.UserID), nil).Times(1)

		_, err := svc.Get(as(customer), "b1")
		require.NoError(t, err)
		assert.Eventually(t, func() bool { return server.Exists("booking:get:b1") }, time.Second, 10*time.Millisecond)

		_, err = svc.Get(as(stranger), "b1")
		assert.Equal(t, failure.KindForbidden, failure.GetKind(err))

		_, err = svc.Get(as(admin), "b1")
		assert.NoError(t, err)
	})

	t.Run("guest", func(t *testing.T) {
		_, svc, _ := setupMock(t)

		_, err := svc.Get(context.Background(), "b1")
		assert.Equal(t, failure.KindUnauthorized, failure.GetKind(err))
	})

	t.Run("unknown", func(t *testing.T) {
		ledger, svc, _ := setupMock(t)
		ledger.EXPECT().Find(gomock.Any(), "nope").Return(model.Booking{}, nil)

		_, err := svc.Get(as(admin), "nope")
		assert.Equal(t, failure.KindNotFound, failure.GetKind(err))
	})

	t.Run("storage failure hides the backend error", func(t *testing.T) {
		ledger, svc, _ := setupMock(t)
		ledger.EXPECT().Find(gomock.Any(), "b1").Return(model.Booking{}, errors.New("pq: connection reset"))

		_, err := svc.Get(as(admin), "b1")
		assert.Equal(t, failure.KindStorage, failure.GetKind(err))
		assert.NotContains(t, err.Error(), "pq")
	})
}

func TestGetAll(t *testing.T) {
	params := gDto.QueryParams{Page: 1, Limit: 2}

	t.Run("admin", func(t *testing.T) {
		ledger, svc, _ := setupMock(t)
		ledger.EXPECT().Count(gomock.Any(), gDto.FilterGroup{}).Return(3, nil)
		ledger.EXPECT().List(gomock.Any(), params, gDto.FilterGroup{}).Return([]model.Booking{stored("b1", "c1"), stored("b2", "c2")}, nil)

		res, err := svc.GetAll(as(admin), params, gDto.FilterGroup{})
		require.NoError(t, err)
		assert.Len(t, res.Bookings, 2)
		assert.Equal(t, 3, res.TotalData)
		assert.Equal(t, 2, res.TotalPage)
	})

	t.Run("customer is forbidden", func(t *testing.T) {
		_, svc, _ := setupMock(t)

		_, err := svc.GetAll(as(customer), params, gDto.FilterGroup{})
		assert.Equal(t, failure.KindForbidden, failure.GetKind(err))
	})
}

func TestGetMine(t *testing.T) {
	ledger, svc, _ := setupMock(t)
	params := gDto.QueryParams{Page: 1, Limit: 10}
	mine := gDto.And(gDto.Eq(model.TableName, model.FieldCustomerID, customer.UserID))

	ledger.EXPECT().Count(gomock.Any(), mine).Return(1, nil)
	ledger.EXPECT().List(gomock.Any(), params, mine).Return([]model.Booking{stored("b1", customer.UserID)}, nil)

	res, err := svc.GetMine(as(customer), params)
	require.NoError(t, err)
	require.Len(t, res.Bookings, 1)
	assert.Equal(t, customer.UserID, res.Bookings[0].CustomerID)

	_, err = svc.GetMine(context.Background(), params)
	assert.Equal(t, failure.KindUnauthorized, failure.GetKind(err))
}

func TestCreate_LockTimeoutIsStorage(t *testing.T) {
	ledger, svc, _ := setupMock(t)
	ledger.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(shared.WithActor(context.Background(), customer))
	cancel()

	_, err := svc.Create(ctx, unbound(monday, "09:00", 60))
	assert.Equal(t, failure.KindStorage, failure.GetKind(err))
}
