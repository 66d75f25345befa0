package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/pkg/logger"
	"stoutlog/pkg/metrics"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewsCollection = "reviews"

// reviewDocument - представление отзыва в MongoDB (ID назначает сервер)
type reviewDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Date           string             `bson:"date"`
	Name           string             `bson:"name"`
	RatingGuinness int                `bson:"ratingGuinness"`
	RatingPour     int                `bson:"ratingPour"`
	RatingService  int                `bson:"ratingService"`
	Smoking        bool               `bson:"smoking"`
	Price          int                `bson:"price"`
	Comment        string             `bson:"comment"`
	ImagePath      string             `bson:"imagePath,omitempty"`
}

func toDocument(r *entity.Review) reviewDocument {
	return reviewDocument{
		Date:           r.Date,
		Name:           r.Name,
		RatingGuinness: r.RatingGuinness,
		RatingPour:     r.RatingPour,
		RatingService:  r.RatingService,
		Smoking:        r.Smoking,
		Price:          r.Price,
		Comment:        r.Comment,
		ImagePath:      r.ImagePath,
	}
}

func (d *reviewDocument) toEntity() entity.Review {
	return entity.Review{
		ID:             d.ID.Hex(),
		Date:           d.Date,
		Name:           d.Name,
		RatingGuinness: d.RatingGuinness,
		RatingPour:     d.RatingPour,
		RatingService:  d.RatingService,
		Smoking:        d.Smoking,
		Price:          d.Price,
		Comment:        d.Comment,
		ImagePath:      d.ImagePath,
	}
}

type mongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository создает репозиторий отзывов в MongoDB
// и индекс по date для сортировки списка
func NewMongoReviewRepository(db *mongo.Database) ReviewRepository {
	collection := db.Collection(reviewsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}},
		Options: options.Index().SetName("date_idx"),
	}

	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		// индекс может уже существовать - продолжаем работу
		logger.Warn().Err(err).Msg("Failed to create index on date")
	}

	return &mongoReviewRepository{
		collection: collection,
	}
}

// List возвращает все отзывы, новые первыми
func (r *mongoReviewRepository) List(ctx context.Context) ([]entity.Review, error) {
	timer := metrics.NewStoreTimer(BackendMongo, metrics.StoreOpList)

	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "_id", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, timer.Done(fmt.Errorf("failed to find reviews: %w", err))
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, timer.Done(fmt.Errorf("failed to decode reviews: %w", err))
	}

	reviews := make([]entity.Review, 0, len(docs))
	for i := range docs {
		reviews = append(reviews, docs[i].toEntity())
	}

	return reviews, timer.Done(nil)
}

func (r *mongoReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	timer := metrics.NewStoreTimer(BackendMongo, metrics.StoreOpGet)

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// не ObjectID - такого отзыва быть не может
		return nil, timer.Done(ErrReviewNotFound)
	}

	var doc reviewDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, timer.Done(ErrReviewNotFound)
		}
		return nil, timer.Done(fmt.Errorf("failed to get review: %w", err))
	}

	review := doc.toEntity()
	return &review, timer.Done(nil)
}

func (r *mongoReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewStoreTimer(BackendMongo, metrics.StoreOpCreate)

	result, err := r.collection.InsertOne(ctx, toDocument(review))
	if err != nil {
		return timer.Done(fmt.Errorf("failed to create review: %w", err))
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		review.ID = oid.Hex()
	}

	return timer.Done(nil)
}

// Update заменяет все поля кроме _id и date
func (r *mongoReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewStoreTimer(BackendMongo, metrics.StoreOpUpdate)

	objectID, err := primitive.ObjectIDFromHex(review.ID)
	if err != nil {
		return timer.Done(ErrReviewNotFound)
	}

	update := bson.M{
		"$set": bson.M{
			"name":           review.Name,
			"ratingGuinness": review.RatingGuinness,
			"ratingPour":     review.RatingPour,
			"ratingService":  review.RatingService,
			"smoking":        review.Smoking,
			"price":          review.Price,
			"comment":        review.Comment,
		},
	}
	if review.ImagePath != "" {
		update["$set"].(bson.M)["imagePath"] = review.ImagePath
	} else {
		update["$unset"] = bson.M{"imagePath": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return timer.Done(fmt.Errorf("failed to update review: %w", err))
	}

	if result.MatchedCount == 0 {
		return timer.Done(ErrReviewNotFound)
	}

	return timer.Done(nil)
}

func (r *mongoReviewRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewStoreTimer(BackendMongo, metrics.StoreOpDelete)

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return timer.Done(ErrReviewNotFound)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return timer.Done(fmt.Errorf("failed to delete review: %w", err))
	}

	if result.DeletedCount == 0 {
		return timer.Done(ErrReviewNotFound)
	}

	return timer.Done(nil)
}
