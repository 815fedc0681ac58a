package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/LingkKang/dracon/config"
	"github.com/LingkKang/dracon/storage"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logger := log.NewLogfmtLogger(os.Stdout)
	registerer := prometheus.NewRegistry()

	opts := config.DefaultOptions
	opts.MaxSegmentSize = 4 * 1024 * 1024

	engine, err := storage.Open(logger, registerer, opts)

	if err != nil {
		level.Error(logger).Log("err", err)
		return
	}

	done := false

	wg := sync.WaitGroup{}
	wg.Add(1)

	go func() {
		defer wg.Done()

		n := 0
		now := time.Now()

		for !done {
			key := []byte(fmt.Sprintf("key-%06d", n))

			if err := engine.Put(key, []byte("It's hello world test for the engine")); err != nil {
				level.Error(logger).Log("err", err)
			}

			n++
		}

		logger.Log("now", time.Now(), "since", time.Since(now), "count", n, "msg", "records have been written")

		if rec, err := engine.Get([]byte("key-000000")); err == nil {
			logger.Log("key", string(rec.Key), "value", string(rec.Value), "msg", "read back first key")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	logger.Log("msg", "app started...")
	<-sigs

	done = true
	wg.Wait()

	if err := engine.Close(); err != nil {
		level.Error(logger).Log("err", err)
	}

	logger.Log("msg", "exiting...")
}
