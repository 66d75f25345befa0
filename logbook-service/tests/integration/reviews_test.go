//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/logbook-service/internal/app/logbook/handler"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure/cache"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure/storage"
	"stoutlog/logbook-service/internal/app/logbook/repository"
	"stoutlog/logbook-service/internal/app/logbook/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MockKafkaProducer struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockKafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKafkaProducer) Close() error { return nil }

// ReviewsIntegrationTestSuite гоняет HTTP API поверх настоящей MongoDB и Redis (miniredis)
type ReviewsIntegrationTestSuite struct {
	suite.Suite
	client        *mongo.Client
	db            *mongo.Database
	miniRedis     *miniredis.Miniredis
	redisClient   *redis.Client
	router        *gin.Engine
	kafkaProducer *MockKafkaProducer
}

func TestReviewsIntegrationSuite(t *testing.T) {
	suite.Run(t, new(ReviewsIntegrationTestSuite))
}

func (s *ReviewsIntegrationTestSuite) SetupSuite() {
	mongoURI := getEnv("TEST_MONGODB_URI", "mongodb://localhost:27018")
	dbName := getEnv("TEST_MONGODB_DATABASE", "stoutlog_test_db")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	s.client, err = mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	s.Require().NoError(err)
	s.Require().NoError(s.client.Ping(ctx, nil))

	s.db = s.client.Database(dbName)

	s.miniRedis, err = miniredis.Run()
	s.Require().NoError(err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()})

	reviewRepo := repository.NewMongoReviewRepository(s.db)
	reviewCache := cache.NewRedisReviewCacheWithClient(s.redisClient, time.Minute)
	images := storage.NewDiskImageStore(s.T().TempDir())
	s.kafkaProducer = &MockKafkaProducer{Messages: make([][]byte, 0)}

	reviewService := service.NewReviewService(reviewRepo, reviewCache, s.kafkaProducer, images)

	gin.SetMode(gin.TestMode)
	s.router = handler.SetupRoutes(handler.NewReviewHandler(reviewService), handler.RouterConfig{
		MaxUploadBytes: 1 << 20,
	})
}

func (s *ReviewsIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	s.db.Collection("reviews").DeleteMany(ctx, map[string]interface{}{})
	s.miniRedis.FlushAll()
	s.kafkaProducer.Messages = make([][]byte, 0)
	s.kafkaProducer.ExpectedCalls = nil
	s.kafkaProducer.Calls = nil
	s.kafkaProducer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func (s *ReviewsIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.db.Drop(ctx)
		s.client.Disconnect(ctx)
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}

func (s *ReviewsIntegrationTestSuite) send(method, target string, form url.Values) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func reviewForm(name, comment string) url.Values {
	return url.Values{
		"name":           {name},
		"ratingGuinness": {"8"},
		"ratingPour":     {"6"},
		"ratingService":  {"9"},
		"smoking":        {"false"},
		"price":          {"65"},
		"comment":        {comment},
	}
}

func (s *ReviewsIntegrationTestSuite) create(name string) *entity.Review {
	w := s.send(http.MethodPost, "/api/reviews", reviewForm(name, ""))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp entity.MessageResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Review
}

func (s *ReviewsIntegrationTestSuite) list() []entity.ReviewView {
	w := s.send(http.MethodGet, "/api/reviews", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var views []entity.ReviewView
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &views))
	return views
}

func (s *ReviewsIntegrationTestSuite) TestCreateReview_Success() {
	created := s.create("O'Learys")

	s.Len(created.ID, 24) // ObjectID hex
	s.Len(s.kafkaProducer.Messages, 1)

	views := s.list()
	s.Require().Len(views, 1)
	s.Equal(7.7, views[0].Score)
	s.Require().NotNil(views[0].ValueIndex)
	s.Equal(6, *views[0].ValueIndex)
}

func (s *ReviewsIntegrationTestSuite) TestListIsCachedAndInvalidated() {
	s.create("O'Learys")
	s.Len(s.list(), 1)
	s.True(s.miniRedis.Exists("reviews:all"))

	s.create("Kehlstein")
	s.False(s.miniRedis.Exists("reviews:all"))
	s.Len(s.list(), 2)
}

func (s *ReviewsIntegrationTestSuite) TestUpdateReview_KeepsDate() {
	created := s.create("O'Learys")

	w := s.send(http.MethodPut, "/api/reviews/"+created.ID, reviewForm("O'Learys", "updated"))
	s.Require().Equal(http.StatusOK, w.Code)

	var resp entity.MessageResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("updated", resp.Review.Comment)
	s.Equal(created.Date, resp.Review.Date)

	views := s.list()
	s.Require().Len(views, 1)
	s.Equal("updated", views[0].Comment)
}

func (s *ReviewsIntegrationTestSuite) TestUpdateReview_UnknownID() {
	w := s.send(http.MethodPut, "/api/reviews/000000000000000000000000", reviewForm("x", ""))
	s.Equal(http.StatusNotFound, w.Code)

	w = s.send(http.MethodPut, "/api/reviews/not-an-object-id", reviewForm("x", ""))
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ReviewsIntegrationTestSuite) TestDeleteReview() {
	created := s.create("O'Learys")

	w := s.send(http.MethodDelete, "/api/reviews/"+created.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.list())

	w = s.send(http.MethodDelete, "/api/reviews/"+created.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ReviewsIntegrationTestSuite) TestPlacesGrouping() {
	s.create("Kehlstein")
	s.create(" kehlstein ")

	w := s.send(http.MethodGet, "/api/places", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var places []entity.Place
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &places))
	s.Require().Len(places, 1)
	s.Equal(2, places[0].VisitCount)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
