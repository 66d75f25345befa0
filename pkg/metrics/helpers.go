package metrics

import (
	"time"
)

type StoreOperation string

const (
	StoreOpList   StoreOperation = "list"
	StoreOpGet    StoreOperation = "get"
	StoreOpCreate StoreOperation = "create"
	StoreOpUpdate StoreOperation = "update"
	StoreOpDelete StoreOperation = "delete"
)

type StoreTimer struct {
	backend   string
	operation StoreOperation
	start     time.Time
}

func NewStoreTimer(backend string, op StoreOperation) *StoreTimer {
	return &StoreTimer{
		backend:   backend,
		operation: op,
		start:     time.Now(),
	}
}

// Done записывает длительность операции и, если err != nil, ошибку.
// Возвращает err без изменений, чтобы можно было писать `return t.Done(err)`.
func (st *StoreTimer) Done(err error) error {
	StoreOperationDuration.WithLabelValues(st.backend, string(st.operation)).Observe(time.Since(st.start).Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(st.backend, string(st.operation)).Inc()
	}
	return err
}

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}

func RecordCacheError(op string) {
	CacheErrors.WithLabelValues(op).Inc()
}

type KafkaProduceTimer struct {
	topic string
	start time.Time
}

func NewKafkaProduceTimer(topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		topic: topic,
		start: time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	KafkaErrors.WithLabelValues(kt.topic).Inc()
}

func RecordUpload(backend string, size int64) {
	UploadsStored.WithLabelValues(backend).Inc()
	UploadBytes.WithLabelValues(backend).Add(float64(size))
}

// RecordRatings кладёт три под-оценки отзыва в гистограмму
func RecordRatings(guinness, pour, service int) {
	ReviewsRating.WithLabelValues("guinness").Observe(float64(guinness))
	ReviewsRating.WithLabelValues("pour").Observe(float64(pour))
	ReviewsRating.WithLabelValues("service").Observe(float64(service))
}
