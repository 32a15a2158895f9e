package cache

import (
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// key names definition
// key names in lua script should follow these formats
const (
	MovieDetailKey     = "movie:%d:detail"      // cached movie with its reviews, '%d' is movie id
	MovieRatingLockKey = "movie:%d:rating:lock" // lock serializing rating writes of a movie, '%d' is movie id

	MovieListVersionKey = "movies:list:version" // bumped whenever any listing may have changed
	MovieListKey        = "movies:list:v%d:%s"  // cached listing page, '%d' is list version, '%s' is the query
)

const (
	DetailTTL = 5 * time.Minute
	ListTTL   = 1 * time.Minute

	LockTTL  = 10 * time.Second
	LockWait = 5 * time.Second
)

func MakeMovieDetailKey(movieID uint) string {
	return fmt.Sprintf(MovieDetailKey, movieID)
}

func MakeMovieRatingLockKey(movieID uint) string {
	return fmt.Sprintf(MovieRatingLockKey, movieID)
}

func MakeMovieListKey(version int64, query string) string {
	return fmt.Sprintf(MovieListKey, version, query)
}

// errors
var (
	ErrCacheMiss   = errors.New("cache miss")
	ErrLockTimeout = errors.New("timed out waiting for lock")
)

// lua scripts
var releaseLockScript = redis.NewScript(`
	-- KEYS[1] = lock key
	-- ARGV[1] = token of the holder

	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

var invalidateMovieScript = redis.NewScript(`
	-- KEYS[1] = movies:list:version
	-- KEYS[2] = movie:{movie_id}:detail, optional

	if KEYS[2] then
		redis.call("DEL", KEYS[2])
	end
	return redis.call("INCR", KEYS[1])
`)
