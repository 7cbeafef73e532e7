package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds process-wide defaults read from the environment.
type Env struct {
	DataDir string  // BARFEA_DATA
	Addr    string  // BARFEA_ADDR
	Rate    float64 // BARFEA_RATE, requests per second per client
	Burst   int     // BARFEA_BURST
}

func DefaultEnv() Env {
	return Env{
		DataDir: ".barfea",
		Addr:    ":8080",
		Rate:    5,
		Burst:   10,
	}
}

// LoadEnv loads the given dotenv files (".env" when none are given) into the
// process environment and reads the BARFEA_* variables. Missing files are
// not an error; variables already set in the environment win.
func LoadEnv(files ...string) (Env, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf("load env: %w", err)
	}

	env := DefaultEnv()
	if v := os.Getenv("BARFEA_DATA"); v != "" {
		env.DataDir = v
	}
	if v := os.Getenv("BARFEA_ADDR"); v != "" {
		env.Addr = v
	}
	if v := os.Getenv("BARFEA_RATE"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Env{}, fmt.Errorf("BARFEA_RATE: %w", err)
		}
		env.Rate = r
	}
	if v := os.Getenv("BARFEA_BURST"); v != "" {
		b, err := strconv.Atoi(v)
		if err != nil {
			return Env{}, fmt.Errorf("BARFEA_BURST: %w", err)
		}
		env.Burst = b
	}
	return env, nil
}
