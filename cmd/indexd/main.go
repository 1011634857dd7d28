// indexd は合成株価指数のバッチ処理CLIです。
// 価格の取り込み、構成銘柄・指数水準の計算、除数の管理を行います。
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"index_backend/internal/app/di"
	consadapters "index_backend/internal/feature/constituents/adapters"
	consusecase "index_backend/internal/feature/constituents/usecase"
	divadapters "index_backend/internal/feature/divisor/adapters"
	divusecase "index_backend/internal/feature/divisor/usecase"
	levadapters "index_backend/internal/feature/levels/adapters"
	levusecase "index_backend/internal/feature/levels/usecase"
	pricesadapters "index_backend/internal/feature/prices/adapters"
	pricesusecase "index_backend/internal/feature/prices/usecase"
	infradb "index_backend/internal/platform/db"
	"index_backend/internal/shared/ratelimiter"
	"index_backend/internal/shared/sources"
	"index_backend/internal/shared/tradingcal"
)

var (
	flagSource    string
	flagDate      string
	flagSyncStart string
)

// parseDate は空文字列ならニューヨーク時間の今日を返します。
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return tradingcal.DateOf(time.Now().In(tradingcal.NY)), nil
	}
	return tradingcal.ParseDate(s)
}

// parseOptionalDate は空文字列ならゼロ値を返します。
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return tradingcal.ParseDate(s)
}

func resolveDates() (runDate, syncStart time.Time, err error) {
	runDate, err = parseDate(flagDate)
	if err != nil {
		return
	}
	syncStart, err = parseOptionalDate(flagSyncStart)
	return
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "ユニバース全銘柄の日足OHLCと発行済株式数を取り込む",
		RunE: func(cmd *cobra.Command, args []string) error {
			runDate, syncStart, err := resolveDates()
			if err != nil {
				return err
			}

			db := infradb.OpenDB()
			market := di.NewMarket()
			obsRepo := pricesadapters.NewObservationRepository(db)
			univRepo := pricesadapters.NewUniverseRepository(db)
			// Twelve Data無料枠のレート上限に合わせる
			limiter := ratelimiter.NewRateLimiter(8, time.Minute)
			uc := pricesusecase.NewIngestUsecase(market, obsRepo, univRepo, limiter)

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
			defer cancel()

			return uc.IngestRange(ctx, runDate, syncStart)
		},
	}
}

func newUniverseCmd() *cobra.Command {
	universeCmd := &cobra.Command{
		Use:   "universe",
		Short: "取り込み対象の銘柄ユニバースを管理する",
	}

	addCmd := &cobra.Command{
		Use:   "add TICKER...",
		Short: "銘柄をユニバースへ追加する",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := infradb.OpenDB()
			univRepo := pricesadapters.NewUniverseRepository(db)

			for _, ticker := range args {
				if err := univRepo.Add(cmd.Context(), ticker); err != nil {
					return fmt.Errorf("add %s: %w", ticker, err)
				}
			}
			return nil
		},
	}

	universeCmd.AddCommand(addCmd)
	return universeCmd
}

func newConstituentsCmd() *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:   "constituents",
		Short: "時価総額上位N銘柄をランク付けし、翌取引日の構成銘柄として保存する",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sources.Validate(flagSource); err != nil {
				return err
			}
			runDate, syncStart, err := resolveDates()
			if err != nil {
				return err
			}

			db := infradb.OpenDB()
			obsRepo := pricesadapters.NewObservationRepository(db)
			consRepo := consadapters.NewConstituentRepository(db)
			uc := consusecase.NewComputeUsecase(obsRepo, consRepo, topN)

			return uc.Compute(cmd.Context(), flagSource, runDate, syncStart)
		},
	}

	cmd.Flags().IntVar(&topN, "top-n", consusecase.DefaultIndexSize, "構成銘柄数")
	return cmd
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "構成銘柄の価格逆数和から指数水準を計算して保存する",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sources.Validate(flagSource); err != nil {
				return err
			}
			runDate, syncStart, err := resolveDates()
			if err != nil {
				return err
			}

			db := infradb.OpenDB()
			obsRepo := pricesadapters.NewObservationRepository(db)
			consRepo := consadapters.NewConstituentRepository(db)
			levRepo := levadapters.NewLevelRepository(db)
			divUC := divusecase.NewDivisorUsecase(divadapters.NewDivisorRepository(db), levRepo, levRepo)
			uc := levusecase.NewComputeUsecase(obsRepo, consRepo, divUC, levRepo)

			return uc.Compute(cmd.Context(), flagSource, runDate, syncStart)
		},
	}
}

func newDivisorCmd() *cobra.Command {
	divisorCmd := &cobra.Command{
		Use:   "divisor",
		Short: "指数除数を管理する",
	}

	newUsecase := func() *divusecase.DivisorUsecase {
		db := infradb.OpenDB()
		levRepo := levadapters.NewLevelRepository(db)
		return divusecase.NewDivisorUsecase(divadapters.NewDivisorRepository(db), levRepo, levRepo)
	}

	var setValue float64
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "指定日から有効な除数を設定する",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sources.Validate(flagSource); err != nil {
				return err
			}
			startDate, err := parseDate(flagDate)
			if err != nil {
				return err
			}
			return newUsecase().Set(cmd.Context(), flagSource, setValue, startDate)
		},
	}
	setCmd.Flags().Float64Var(&setValue, "value", 0, "除数の値")
	_ = setCmd.MarkFlagRequired("value")

	bootstrapCmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "指数がデータ初日に基準水準で始まるよう除数を初期化する",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sources.Validate(flagSource); err != nil {
				return err
			}
			startDate, err := parseDate(flagDate)
			if err != nil {
				return err
			}
			return newUsecase().Bootstrap(cmd.Context(), flagSource, startDate)
		},
	}

	var rebaseStart, rebaseEnd string
	rebaseCmd := &cobra.Command{
		Use:   "rebase",
		Short: "基準日の除数で保存済み水準のOHLCを一括リベースする",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sources.Validate(flagSource); err != nil {
				return err
			}
			refDate, err := parseDate(flagDate)
			if err != nil {
				return err
			}

			var startPtr, endPtr *time.Time
			if rebaseStart != "" {
				d, err := tradingcal.ParseDate(rebaseStart)
				if err != nil {
					return err
				}
				startPtr = &d
			}
			if rebaseEnd != "" {
				d, err := tradingcal.ParseDate(rebaseEnd)
				if err != nil {
					return err
				}
				endPtr = &d
			}

			return newUsecase().NormalizeLevels(cmd.Context(), flagSource, refDate, startPtr, endPtr)
		},
	}
	rebaseCmd.Flags().StringVar(&rebaseStart, "start-date", "", "リベース範囲の開始日 (YYYY-MM-DD)")
	rebaseCmd.Flags().StringVar(&rebaseEnd, "end-date", "", "リベース範囲の終了日 (YYYY-MM-DD)")

	divisorCmd.AddCommand(setCmd, bootstrapCmd, rebaseCmd)
	return divisorCmd
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "indexd",
		Short:         "合成株価指数のバッチ処理",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&flagSource, "source", sources.TwelveData, "データソース名")
	rootCmd.PersistentFlags().StringVar(&flagDate, "date", "", "基準日 (YYYY-MM-DD、省略時はNY時間の今日)")
	rootCmd.PersistentFlags().StringVar(&flagSyncStart, "sync-start-date", "", "バックフィル開始日 (YYYY-MM-DD)")

	rootCmd.AddCommand(
		newIngestCmd(),
		newUniverseCmd(),
		newConstituentsCmd(),
		newLevelsCmd(),
		newDivisorCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
