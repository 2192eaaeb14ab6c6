package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/devprofiles/internal/application/service"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
)

type RedisProfileCacheIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	rdb       *redis.Client
	cache     service.ProfileCache
}

func (s *RedisProfileCacheIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(1 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.container = container

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		s.T().Fatalf("Failed to get redis endpoint: %s", err)
	}

	s.rdb = redis.NewClient(&redis.Options{Addr: endpoint})
	s.cache = NewRedisProfileCache(s.rdb, time.Minute)
}

func (s *RedisProfileCacheIntegrationTestSuite) TearDownSuite() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(context.Background()); err != nil {
			s.T().Logf("Failed to terminate redis container: %s", err)
		}
	}
}

func (s *RedisProfileCacheIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.rdb.FlushDB(context.Background()).Err())
}

func TestRedisProfileCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode.")
	}
	suite.Run(t, new(RedisProfileCacheIntegrationTestSuite))
}

func (s *RedisProfileCacheIntegrationTestSuite) cachedProfile() *profile.Profile {
	ownerID := uuid.New()
	p := profile.Build(ownerID, profile.Fields{
		Status:  profile.T("Developer"),
		Skills:  profile.T("go, redis"),
		Twitter: profile.T("@dev"),
	})
	p.ID = uuid.New()
	p.Owner = &profile.Owner{ID: ownerID, Name: "Dev", Avatar: "//avatar"}
	p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	p.UpdatedAt = p.CreatedAt
	return p
}

func (s *RedisProfileCacheIntegrationTestSuite) Test_ByOwner_MissThenHit() {
	ctx := context.Background()
	p := s.cachedProfile()

	_, ok, err := s.cache.GetByOwner(ctx, p.OwnerID)
	s.Require().NoError(err)
	s.False(ok)

	stored, err := s.cache.SetByOwner(ctx, p, 0)
	s.Require().NoError(err)
	s.Require().True(stored)

	got, ok, err := s.cache.GetByOwner(ctx, p.OwnerID)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(p.ID, got.ID)
	s.Equal(p.Skills, got.Skills)
	s.Equal("Dev", got.Owner.Name)
	s.Equal("@dev", *got.Social.Twitter)
	s.True(p.CreatedAt.Equal(got.CreatedAt))
}

func (s *RedisProfileCacheIntegrationTestSuite) Test_InvalidateDropsOwnerAndList() {
	ctx := context.Background()
	p := s.cachedProfile()

	_, err := s.cache.SetByOwner(ctx, p, 0)
	s.Require().NoError(err)
	_, err = s.cache.SetAll(ctx, []*profile.Profile{p}, 0)
	s.Require().NoError(err)

	all, ok, err := s.cache.GetAll(ctx)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Len(all, 1)

	s.Require().NoError(s.cache.Invalidate(ctx, p.OwnerID))

	_, ok, err = s.cache.GetByOwner(ctx, p.OwnerID)
	s.NoError(err)
	s.False(ok)
	_, ok, err = s.cache.GetAll(ctx)
	s.NoError(err)
	s.False(ok)
}

func (s *RedisProfileCacheIntegrationTestSuite) Test_EmptyListIsCached() {
	ctx := context.Background()
	_, err := s.cache.SetAll(ctx, []*profile.Profile{}, 0)
	s.Require().NoError(err)

	all, ok, err := s.cache.GetAll(ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Empty(all)
}

func (s *RedisProfileCacheIntegrationTestSuite) Test_CorruptEntryIsAMiss() {
	ctx := context.Background()
	ownerID := uuid.New()
	s.Require().NoError(s.rdb.Set(ctx, profileKey(ownerID), "{not json", time.Minute).Err())

	_, ok, err := s.cache.GetByOwner(ctx, ownerID)
	s.NoError(err)
	s.False(ok)
	s.Equal(int64(0), s.rdb.Exists(ctx, profileKey(ownerID)).Val())
}

func (s *RedisProfileCacheIntegrationTestSuite) Test_FillWithStaleStampIsDropped() {
	ctx := context.Background()
	p := s.cachedProfile()

	ownerStamp, err := s.cache.OwnerStamp(ctx, p.OwnerID)
	s.Require().NoError(err)
	listStamp, err := s.cache.ListStamp(ctx)
	s.Require().NoError(err)

	// A delete lands between the store read and the fill.
	s.Require().NoError(s.cache.Invalidate(ctx, p.OwnerID))

	stored, err := s.cache.SetByOwner(ctx, p, ownerStamp)
	s.Require().NoError(err)
	s.False(stored)
	stored, err = s.cache.SetAll(ctx, []*profile.Profile{p}, listStamp)
	s.Require().NoError(err)
	s.False(stored)

	_, ok, err := s.cache.GetByOwner(ctx, p.OwnerID)
	s.NoError(err)
	s.False(ok)
	_, ok, err = s.cache.GetAll(ctx)
	s.NoError(err)
	s.False(ok)

	fresh, err := s.cache.OwnerStamp(ctx, p.OwnerID)
	s.Require().NoError(err)
	s.Greater(int64(fresh), int64(ownerStamp))
	stored, err = s.cache.SetByOwner(ctx, p, fresh)
	s.Require().NoError(err)
	s.True(stored)
	s.Greater(s.rdb.TTL(ctx, profileGenKey(p.OwnerID)).Val(), time.Duration(0))
}
