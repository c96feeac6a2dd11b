package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ecowarn/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	client := &Client{rdb: db, config: &RedisConfig{}, logger: logging.NewNopLogger()}
	s.cache = NewRedisCache(client, logging.NewNopLogger(), WithPrefix("test:"), WithJitter(0))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type cachedResult struct {
	Verdict string `json:"verdict"`
	MDA     int    `json:"mda"`
}

func (s *CacheTestSuite) TestGet_Hit() {
	val := cachedResult{Verdict: "POTENTIAL_RISK", MDA: 2}
	raw, _ := json.Marshal(val)
	s.mock.ExpectGet("test:result:1").SetVal(string(raw))

	var dest cachedResult
	err := s.cache.Get(context.Background(), "result:1", &dest)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), val, dest)
}

func (s *CacheTestSuite) TestGet_Miss() {
	s.mock.ExpectGet("test:result:1").RedisNil()

	var dest cachedResult
	err := s.cache.Get(context.Background(), "result:1", &dest)
	assert.Equal(s.T(), ErrCacheMiss, err)
	assert.True(s.T(), pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_UndecodableIsMiss() {
	s.mock.ExpectGet("test:result:1").SetVal("{not json")

	var dest cachedResult
	assert.Equal(s.T(), ErrCacheMiss, s.cache.Get(context.Background(), "result:1", &dest))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:result:1").SetErr(assert.AnError)

	var dest cachedResult
	err := s.cache.Get(context.Background(), "result:1", &dest)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestSet_ExplicitTTL() {
	val := cachedResult{Verdict: "NO_RISK"}
	raw, _ := json.Marshal(val)
	s.mock.ExpectSet("test:result:1", raw, 5*time.Minute).SetVal("OK")

	assert.NoError(s.T(), s.cache.Set(context.Background(), "result:1", val, 5*time.Minute))
}

func (s *CacheTestSuite) TestSet_DefaultTTL() {
	val := cachedResult{Verdict: "NO_RISK"}
	raw, _ := json.Marshal(val)
	s.mock.ExpectSet("test:result:1", raw, 10*time.Minute).SetVal("OK")

	assert.NoError(s.T(), s.cache.Set(context.Background(), "result:1", val, 0))
}

func (s *CacheTestSuite) TestSet_Unserialisable() {
	err := s.cache.Set(context.Background(), "k", make(chan int), time.Minute)
	assert.True(s.T(), pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:result:aquatic*", 100).SetVal([]string{"test:result:aquatic:1", "test:result:aquatic:2"}, 7)
	s.mock.ExpectDel("test:result:aquatic:1", "test:result:aquatic:2").SetVal(2)
	s.mock.ExpectScan(7, "test:result:aquatic*", 100).SetVal([]string{}, 0)

	n, err := s.cache.DeleteByPrefix(context.Background(), "result:aquatic")
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), n)
}

func (s *CacheTestSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	assert.NoError(s.T(), s.cache.Ping(context.Background()))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func TestJitterTTL_StaysInBand(t *testing.T) {
	c := &redisCache{jitter: 0.1}
	for i := 0; i < 100; i++ {
		got := c.jitterTTL(time.Minute)
		assert.GreaterOrEqual(t, got, 54*time.Second)
		assert.LessOrEqual(t, got, 66*time.Second)
	}
	assert.Equal(t, time.Duration(0), c.jitterTTL(0))
}

//Personal.AI order the ending
