package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/xor-shift/xoshiro/common"
	"github.com/xor-shift/xoshiro/dealer"
)

const (
	createTableQuery = "" +
		"CREATE TABLE IF NOT EXISTS blocks (" +
		"id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY" +
		", stream_id VARCHAR(255) NOT NULL" +
		", variant VARCHAR(32) NOT NULL" +
		", worker INT NOT NULL" +
		", block_offset BIGINT UNSIGNED NOT NULL" +
		", value_count INT NOT NULL" +
		", first_value CHAR(16) NOT NULL" +
		", verified BOOLEAN NOT NULL" +
		", insert_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP" +
		")"

	insertQuery = "" +
		"INSERT INTO blocks (stream_id, variant, worker, block_offset, value_count, first_value, verified)" +
		" VALUES (?, ?, ?, ?, ?, ?, ?)"
)

func init() {
	if err := common.LoadEnv(); err != nil {
		log.Fatal().Err(err).Msg("loading dotenv failed")
	}

	common.SetupLogging()
}

func recordBlock(ctx context.Context, db *sql.DB, block common.Block, verified bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var stmt *sql.Stmt
	if stmt, err = tx.Prepare(insertQuery); err != nil {
		return err
	}
	defer stmt.Close()

	firstValue := ""
	if len(block.Values) > 0 {
		firstValue = fmt.Sprintf("%016x", block.Values[0])
	}

	if _, err = stmt.Exec(
		block.Spec.ID, block.Spec.Variant, block.Worker,
		block.Offset, len(block.Values), firstValue, verified,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func main() {
	var err error

	var consumer *common.AMQPConsumer
	var db *sql.DB

	if db, err = sql.Open("mysql", common.DBConfig().FormatDSN()); err != nil {
		log.Fatal().Err(err).Msg("opening the database failed")
	}

	defer db.Close()

	if _, err = db.Exec(createTableQuery); err != nil {
		log.Fatal().Err(err).Msg("creating the blocks table failed")
	}

	auditor := dealer.NewAuditor()

	if consumer, err = common.NewAMQPConsumer(
		common.AMQPURL(),
		common.BlockExchange,
		"block_queue_db",
		"block_consumer_db",
		func(block common.Block) error {
			auditErr := auditor.Audit(block)

			var mismatch *dealer.MismatchError
			if errors.As(auditErr, &mismatch) {
				log.Warn().Err(auditErr).Str("stream", block.Key()).Msg("stream does not reproduce")
			}

			// unverifiable blocks are recorded too, as such
			if err := recordBlock(context.Background(), db, block, auditErr == nil); err != nil {
				return fmt.Errorf("recording block: %w", err)
			}

			return auditErr
		}); err != nil {
		log.Fatal().Err(err).Msg("connecting to amqp failed")
	}

	if err = consumer.Start(); err != nil {
		log.Fatal().Err(err).Msg("starting the consumer failed")
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	<-signals

	log.Info().Msg("shutting down")

	if err = consumer.Stop(); err != nil {
		log.Error().Err(err).Msg("stopping the consumer failed")
	}

	consumer.Wait()

	if err = consumer.Close(); err != nil {
		log.Error().Err(err).Msg("closing the consumer failed")
	}
}
