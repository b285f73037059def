package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// entry holds the outcome of the first load of one configuration type.
type entry struct {
	once  sync.Once
	value any
	err   error
}

var (
	entries sync.Map // type name -> *entry

	defaultEnvLoaded sync.Once
)

// Load parses environment variables into v according to its env tags.
// Each configuration type is parsed once; later calls return the cached copy,
// or the cached error.
//
// The .env file of the working directory is read before the first parse, if
// present. Variables already set in the process win over the file.
//
//	type Config struct {
//		APIBaseURL string `env:"API_BASE_URL,required"`
//		CookieName string `env:"AUTH_COOKIE_NAME" envDefault:"auth_token"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The file is optional.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	actual, _ := entries.LoadOrStore(typeName[T](), &entry{})
	e := actual.(*entry)
	e.once.Do(func() {
		var parsed T
		if err := env.Parse(&parsed); err != nil {
			e.err = errors.Join(ErrParsingConfig, err)
			return
		}
		e.value = parsed
	})
	if e.err != nil {
		return e.err
	}

	cached, ok := e.value.(T)
	if !ok {
		return ErrInvalidConfigType
	}
	*v = cached
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// LoadEnvFiles reads the given dotenv files into the process environment,
// overriding variables already set. It must run before the first Load of the
// types it affects.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Overload(files...); err != nil {
		return errors.Join(ErrEnvFile, err)
	}
	return nil
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t.PkgPath() + "." + t.String()
}
