package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/model"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/repository"
)

// Intake conversation steps. The per-category questions use stepSpecificAt
// with a numeric index appended.
const (
	stepIntakeCategory    = "intake_category"
	stepIntakeObjective   = "intake_objective"
	stepIntakeAudience    = "intake_audience"
	stepIntakeFeatures    = "intake_features"
	stepIntakeDeadline    = "intake_deadline"
	stepIntakeBudget      = "intake_budget"
	stepIntakeDesign      = "intake_design"
	stepIntakeMaintenance = "intake_maintenance"
	stepSpecificAt        = "intake_specific_" // + index
)

type intakeQuestion struct {
	key    string
	prompt string
}

// specificQuestions is asked in order after the general block; the key names
// the entry in the budget's specific answers.
var specificQuestions = map[model.Category][]intakeQuestion{
	model.CategorySite: {
		{"type", "🌐 What kind of site do you need? (institutional, e-commerce, blog, etc.)"},
		{"pages", "📑 Roughly how many pages will the site have?"},
		{"responsive", "📱 Does the site need to be responsive (mobile friendly)?"},
		{"forms", "📝 Will you need forms? Which ones?"},
		{"seo", "🔍 Do you want SEO optimization?"},
		{"cms", "⚙️ Will you need a content management system?"},
	},
	model.CategoryBot: {
		{"platform", "📱 Which platform will the bot run on? (Telegram, WhatsApp, Discord, etc.)"},
		{"purpose", "🎯 What is the bot's main purpose? (support, automation, etc.)"},
		{"flow", "🔄 Do you already have a conversation flow defined?"},
		{"integrations", "🔌 Will the bot need to integrate with other systems?"},
		{"scalability", "📈 How many concurrent users do you expect?"},
	},
	model.CategoryApp: {
		{"platform", "📱 Will the app target Android, iOS or both?"},
		{"offline", "🔌 Does the app need to work offline?"},
		{"features", "📲 Which device features will it need? (GPS, camera, etc.)"},
		{"store", "🏪 Do you want it published on the official stores?"},
		{"auth", "🔐 Which sign-in method do you prefer? (email, social, etc.)"},
	},
	model.CategoryScript: {
		{"purpose", "🎯 What problem will the script solve?"},
		{"execution", "⚙️ How will it run? (manual, automated, scheduled)"},
		{"io", "📥 What are the expected inputs and outputs?"},
		{"environment", "💻 In which environment will it run?"},
		{"performance", "📊 What data volume do you expect?"},
	},
}

var generalQuestions = []struct {
	step   string
	prompt string
}{
	{stepIntakeObjective, "🎯 What is the main goal of your project?"},
	{stepIntakeAudience, "👥 Who is the target audience?"},
	{stepIntakeFeatures, "⚡ Which features are essential?"},
	{stepIntakeDeadline, "⏰ What is the ideal delivery deadline?"},
	{stepIntakeBudget, "💰 What budget do you have available?"},
	{stepIntakeDesign, "🎨 Do you have design references or a visual identity?"},
}

// Reply is what a conversation step tells the bot to show next.
type Reply struct {
	Text string
	Rows [][]adapter.InlineButton
	Done bool
}

// Compile-time check
var _ IntakeUseCase = (*intakeUC)(nil)

// IntakeUseCase runs the budget intake conversation. State lives in the
// conversation-state repository and expires on idleness; /cancel clears it at
// any step.
type IntakeUseCase interface {
	Begin(ctx context.Context, senderID int64) (Reply, error)
	HandleCategory(ctx context.Context, senderID int64, raw string) (Reply, error)
	HandleAnswer(ctx context.Context, senderID int64, text string) (Reply, error)
	HandleMaintenance(ctx context.Context, senderID int64, yes bool) (Reply, error)
	Cancel(ctx context.Context, senderID int64) error
	// Active reports whether the sender has an intake conversation going,
	// so the message router can claim their free-text messages.
	Active(ctx context.Context, senderID int64) bool
}

type intakeUC struct {
	state   repository.StateRepository
	budgets BudgetUseCase
	log     *zerolog.Logger
}

func NewIntakeUseCase(state repository.StateRepository, budgets BudgetUseCase, logger *zerolog.Logger) *intakeUC {
	return &intakeUC{state: state, budgets: budgets, log: logger}
}

func (uc *intakeUC) Begin(ctx context.Context, senderID int64) (Reply, error) {
	st := &repository.ConversationState{Step: stepIntakeCategory, Data: map[string]string{}}
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{
		Text: "🏷️ What kind of project do you need?",
		Rows: [][]adapter.InlineButton{
			{{Text: "🌐 Site", Data: "intake_cat_SITE"}},
			{{Text: "🤖 Bot", Data: "intake_cat_BOT"}},
			{{Text: "📱 App", Data: "intake_cat_APP"}},
			{{Text: "📜 Script", Data: "intake_cat_SCRIPT"}},
		},
	}, nil
}

func (uc *intakeUC) HandleCategory(ctx context.Context, senderID int64, raw string) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil || st.Step != stepIntakeCategory {
		return Reply{}, domain.ErrInvalidArgument
	}
	cat, ok := model.ParseCategory(strings.TrimPrefix(raw, "intake_cat_"))
	if !ok {
		return Reply{}, fmt.Errorf("intake category %q: %w", raw, domain.ErrInvalidArgument)
	}
	st.Data["category"] = string(cat)
	st.Step = generalQuestions[0].step
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: generalQuestions[0].prompt}, nil
}

func (uc *intakeUC) HandleAnswer(ctx context.Context, senderID int64, text string) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil {
		return Reply{}, domain.ErrNotFound
	}
	text = strings.TrimSpace(text)

	// General questions advance linearly; the design answer hands off to the
	// maintenance yes/no buttons.
	for i, q := range generalQuestions {
		if st.Step != q.step {
			continue
		}
		st.Data[q.step] = text
		if i+1 < len(generalQuestions) {
			st.Step = generalQuestions[i+1].step
			if err := uc.state.SetState(ctx, senderID, st); err != nil {
				return Reply{}, err
			}
			return Reply{Text: generalQuestions[i+1].prompt}, nil
		}
		st.Step = stepIntakeMaintenance
		if err := uc.state.SetState(ctx, senderID, st); err != nil {
			return Reply{}, err
		}
		return Reply{
			Text: "🔧 Will you need maintenance after launch?",
			Rows: [][]adapter.InlineButton{{
				{Text: "✅ Yes", Data: "intake_maint_yes"},
				{Text: "❌ No", Data: "intake_maint_no"},
			}},
		}, nil
	}

	if idx, ok := specificIndex(st.Step); ok {
		qs := specificQuestions[model.Category(st.Data["category"])]
		if idx >= len(qs) {
			return Reply{}, domain.ErrInvalidArgument
		}
		st.Data["sp_"+qs[idx].key] = text
		if idx+1 < len(qs) {
			st.Step = fmt.Sprintf("%s%d", stepSpecificAt, idx+1)
			if err := uc.state.SetState(ctx, senderID, st); err != nil {
				return Reply{}, err
			}
			return Reply{Text: qs[idx+1].prompt}, nil
		}
		return uc.finish(ctx, senderID, st)
	}

	return Reply{}, fmt.Errorf("intake step %q: %w", st.Step, domain.ErrInvalidArgument)
}

func (uc *intakeUC) HandleMaintenance(ctx context.Context, senderID int64, yes bool) (Reply, error) {
	st, err := uc.state.GetState(ctx, senderID)
	if err != nil || st.Step != stepIntakeMaintenance {
		return Reply{}, domain.ErrInvalidArgument
	}
	if yes {
		st.Data["maintenance"] = "yes"
	} else {
		st.Data["maintenance"] = "no"
	}
	qs := specificQuestions[model.Category(st.Data["category"])]
	st.Step = stepSpecificAt + "0"
	if err := uc.state.SetState(ctx, senderID, st); err != nil {
		return Reply{}, err
	}
	return Reply{Text: qs[0].prompt}, nil
}

func (uc *intakeUC) Cancel(ctx context.Context, senderID int64) error {
	return uc.state.ClearState(ctx, senderID)
}

func (uc *intakeUC) Active(ctx context.Context, senderID int64) bool {
	st, err := uc.state.GetState(ctx, senderID)
	return err == nil && strings.HasPrefix(st.Step, "intake_")
}

func (uc *intakeUC) finish(ctx context.Context, senderID int64, st *repository.ConversationState) (Reply, error) {
	cat, ok := model.ParseCategory(st.Data["category"])
	if !ok {
		return Reply{}, domain.ErrInvalidArgument
	}
	answers := model.IntakeAnswers{
		Objective:   st.Data[stepIntakeObjective],
		Audience:    st.Data[stepIntakeAudience],
		Features:    st.Data[stepIntakeFeatures],
		Deadline:    st.Data[stepIntakeDeadline],
		Budget:      st.Data[stepIntakeBudget],
		Design:      st.Data[stepIntakeDesign],
		Maintenance: st.Data["maintenance"] == "yes",
		Specific:    map[string]string{},
	}
	for k, v := range st.Data {
		if strings.HasPrefix(k, "sp_") {
			answers.Specific[strings.TrimPrefix(k, "sp_")] = v
		}
	}

	if _, err := uc.budgets.Create(ctx, fmt.Sprint(senderID), cat, answers); err != nil {
		uc.log.Error().Err(err).Int64("tg_id", senderID).Msg("intake: budget create failed")
		return Reply{}, err
	}
	if err := uc.state.ClearState(ctx, senderID); err != nil {
		uc.log.Warn().Err(err).Int64("tg_id", senderID).Msg("intake: state clear failed")
	}
	return Reply{
		Text: "✅ Budget request sent!\n\nOur team will review it and get back to you soon.\nMeanwhile, take a look at our ready-made products with /store.",
		Done: true,
	}, nil
}

func specificIndex(step string) (int, bool) {
	if !strings.HasPrefix(step, stepSpecificAt) {
		return 0, false
	}
	var idx int
	if _, err := fmt.Sscanf(strings.TrimPrefix(step, stepSpecificAt), "%d", &idx); err != nil {
		return 0, false
	}
	return idx, true
}
