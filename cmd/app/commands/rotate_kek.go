package commands

import (
	"context"
	"fmt"
	"log/slog"

	cryptoUseCase "github.com/keywarden/keywarden/internal/crypto/usecase"
)

// RunRotateKek rewraps every DEK under the named KEK. When oldKekID is
// non-empty only DEKs currently wrapped under it are considered. Per-DEK
// failures are reported but do not abort the batch; re-running the command
// picks up the rows that failed.
func RunRotateKek(
	ctx context.Context,
	dekUseCase cryptoUseCase.DekUseCase,
	logger *slog.Logger,
	io CommandIO,
	newKekID, oldKekID, format string,
) error {
	logger.Info("rotating kek",
		slog.String("new_kek_id", newKekID),
		slog.String("old_kek_id", oldKekID),
	)

	result, err := dekUseCase.RotateKek(ctx, newKekID, oldKekID)
	if err != nil {
		return fmt.Errorf("failed to rotate kek: %w", err)
	}

	if format == "json" {
		outputJSON(result, io.Writer)
	} else {
		writeLine(io.Writer, "KEK rotation finished")
		writeLine(io.Writer, "  Total:    %d", result.Total)
		writeLine(io.Writer, "  Rewrapped: %d", result.Success)
		writeLine(io.Writer, "  Failed:   %d", len(result.Failures))
		for _, failure := range result.Failures {
			writeLine(io.Writer, "    dek %d: %s", failure.DekID, failure.Error)
		}
	}

	logger.Info("kek rotation completed",
		slog.Int("total", result.Total),
		slog.Int("success", result.Success),
		slog.Int("failures", len(result.Failures)),
	)

	if len(result.Failures) > 0 {
		return fmt.Errorf("kek rotation completed with %d failures, re-run to retry", len(result.Failures))
	}
	return nil
}
