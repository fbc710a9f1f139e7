// Package logging provides structured logging for the cardshop client.
//
// The package wraps log/slog with a JSON handler. Every API call is logged
// with its action and request id so a failed purchase or an unexpected 401
// can be traced after the fact without a network capture.
//
// # Basic Usage
//
//	logger, err := logging.NewFileLogger(afero.NewOsFs(), dataDir, logging.Options{
//	    Level:    "INFO",
//	    Rotation: logging.DefaultRotationConfig(),
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithAction("createOrder").Info("order created", "order_no", no)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"order created","action":"createOrder","order_no":"A100"}
//
// # Log Rotation
//
// [RotatingWriter] rotates debug.log when it grows past MaxSizeMB. Backups
// are named debug.log.1 (newest) through debug.log.N, and become .gz files
// when compression is enabled.
//
// # Testing
//
// Use [NopLogger] to discard output, or [New] with a bytes.Buffer to assert
// on emitted entries.
//
// # Configuration
//
//	logging:
//	  enabled: true
//	  level: info
//	  max_size_mb: 10
//	  max_backups: 3
package logging
