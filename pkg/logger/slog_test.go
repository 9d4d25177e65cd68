package logger_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papyrusco/tome/pkg/logger"
)

var _ = Describe("New", func() {
	It("writes JSON records when WithJSON is set", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithJSON(true), logger.WithWriter(&buf))

		log.Info("index ready", "records", 3)

		var record map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
		Expect(record["msg"]).To(Equal("index ready"))
		Expect(record["records"]).To(BeNumerically("==", 3))
	})

	It("suppresses debug records at the default level", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithWriter(&buf))

		log.Debug("hidden")
		Expect(buf.Len()).To(BeZero())
	})

	It("emits debug records when WithDebug is set", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithDebug(true), logger.WithWriter(&buf))

		log.Debug("visible")
		Expect(buf.String()).To(ContainSubstring("visible"))
	})

	It("fans out to multiple writers", func() {
		var a, b bytes.Buffer
		log := logger.New(logger.WithWriters(&a, &b))

		log.Info("both")
		Expect(a.String()).To(ContainSubstring("both"))
		Expect(b.String()).To(ContainSubstring("both"))
	})
})

var _ = Describe("Multi", func() {
	It("dispatches each record to every underlying handler", func() {
		var pretty, structured bytes.Buffer
		log := logger.Multi(
			logger.New(logger.WithWriter(&pretty)),
			logger.New(logger.WithJSON(true), logger.WithWriter(&structured)),
		)

		log.Info("fan out", "key", "value")

		Expect(pretty.String()).To(ContainSubstring("fan out"))

		var record map[string]any
		Expect(json.Unmarshal(structured.Bytes(), &record)).To(Succeed())
		Expect(record["msg"]).To(Equal("fan out"))
		Expect(record["key"]).To(Equal("value"))
	})

	It("respects each handler's own level", func() {
		var quiet, verbose bytes.Buffer
		log := logger.Multi(
			logger.New(logger.WithWriter(&quiet)),
			logger.New(logger.WithDebug(true), logger.WithWriter(&verbose)),
		)

		log.Debug("details")
		Expect(quiet.Len()).To(BeZero())
		Expect(verbose.String()).To(ContainSubstring("details"))
	})
})
