// Package storage содержит локальное key-value хранилище состояния клиента.
package storage

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Ключи, используемые клиентским слоем.
const (
	KeyAuthToken = "authToken"
	KeyTheme     = "theme"
	KeyLocale    = "locale"
)

// ErrNotFound возвращается, если значение по ключу отсутствует.
var ErrNotFound = errors.New("key not found")

var bucketState = []byte("state")

// Store предоставляет персистентное key-value хранилище строковых значений
// поверх локального файла bbolt.
type Store struct {
	db *bolt.DB
}

// Open открывает файл хранилища по указанному пути, создавая его при
// необходимости.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает файл хранилища.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get возвращает значение по ключу. Если значение отсутствует,
// возвращается ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	var value []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketState).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		value = append(value, v...)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read key %q: %w", key, err)
	}

	return string(value), nil
}

// Set сохраняет значение по ключу.
func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// Remove удаляет значение по ключу. Удаление отсутствующего ключа не
// является ошибкой.
func (s *Store) Remove(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}
