package main

import (
	"fmt"

	"github.com/BK-Korea/Reborn-to-Blackswan/internal/domain"
	"github.com/BK-Korea/Reborn-to-Blackswan/internal/service"
	"github.com/spf13/cobra"
)

var (
	actorID     string
	marketPhase string
	themes      []string
	companies   []string
	horizon     string
	action      string
	performance float64
	predicate   string
	decayTicks  int
)

func addContextFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&marketPhase, "phase", "", "market phase, e.g. bear_market")
	cmd.Flags().StringSliceVar(&themes, "themes", nil, "comma-separated key themes")
	cmd.Flags().StringSliceVar(&companies, "companies", nil, "comma-separated mentioned companies")
	cmd.Flags().StringVar(&horizon, "horizon", "", "time horizon, e.g. 1y")
}

func marketContext() domain.MarketContext {
	return domain.MarketContext{
		MarketPhase:        marketPhase,
		KeyThemes:          themes,
		MentionedCompanies: companies,
		TimeHorizon:        horizon,
	}
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict an actor's likely action in a market context",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), true, func(e *service.Engine) error {
			return printJSON(e.Prediction.PredictInvestorBehavior(actorID, marketContext()))
		})
	},
}

var learnQuoteCmd = &cobra.Command{
	Use:   "learn-quote TEXT",
	Short: "Learn from a statement made by an actor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), true, func(e *service.Engine) error {
			triples, err := e.Learning.LearnFromQuote(cmd.Context(), actorID, args[0], marketContext())
			if err := reportWarning(err); err != nil {
				return err
			}
			return printJSON(triples)
		})
	},
}

var learnOutcomeCmd = &cobra.Command{
	Use:   "learn-outcome",
	Short: "Score a past prediction against its realized performance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := domain.Action(action)
		if !a.IsValid() {
			return fmt.Errorf("--action must be one of %v", domain.ValidActions())
		}
		return withEngine(cmd.Context(), true, func(e *service.Engine) error {
			exp, err := e.Learning.LearnFromOutcome(cmd.Context(),
				domain.Prediction{ActorID: actorID, Action: a, Context: marketContext()},
				domain.Outcome{Performance: performance, TimeHorizon: horizon})
			if err := reportWarning(err); err != nil {
				return err
			}
			return printJSON(exp)
		})
	},
}

var relationshipsCmd = &cobra.Command{
	Use:   "relationships ENTITY",
	Short: "List the outgoing relationships of an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), true, func(e *service.Engine) error {
			rels := e.Graph.GetRelationships(args[0], predicate)
			if rels == nil {
				rels = []domain.Relationship{}
			}
			return printJSON(rels)
		})
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild the graph from the durable log and print its size",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), false, func(e *service.Engine) error {
			res, err := e.Learning.Restore(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := e.Learning.Stats(cmd.Context())
			if err := reportWarning(err); err != nil {
				return err
			}
			return printJSON(map[string]any{"restored": res, "stats": stats})
		})
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Preview the effect of decay ticks on the replayed graph",
	Long: `Decay ticks are not written to the durable log, so this command only
shows what the graph would look like after the given number of ticks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd.Context(), true, func(e *service.Engine) error {
			var last domain.DecayResult
			for i := 0; i < decayTicks; i++ {
				last = e.Decay.RunDecay()
			}
			return printJSON(map[string]any{
				"ticks":     decayTicks,
				"last_tick": last,
				"edges":     e.Graph.Edges(),
			})
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{predictCmd, learnQuoteCmd, learnOutcomeCmd} {
		c.Flags().StringVar(&actorID, "actor", "", "actor id, e.g. \"Warren Buffett\"")
		_ = c.MarkFlagRequired("actor")
		addContextFlags(c)
	}
	learnOutcomeCmd.Flags().StringVar(&action, "action", "", "predicted action: buy, sell, hold or avoid")
	learnOutcomeCmd.Flags().Float64Var(&performance, "performance", 0, "realized return, e.g. 0.15")
	_ = learnOutcomeCmd.MarkFlagRequired("action")

	relationshipsCmd.Flags().StringVar(&predicate, "predicate", "", "only relationships with this predicate")
	decayCmd.Flags().IntVar(&decayTicks, "ticks", 1, "number of decay ticks to apply")
}
