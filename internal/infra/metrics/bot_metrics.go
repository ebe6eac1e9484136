package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	budgetsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budgets_created_total",
			Help: "Budget requests created, per category.",
		},
		[]string{"category"},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_status_changes_total",
			Help: "Committed status transitions, per target status.",
		},
		[]string{"status"},
	)

	proposalsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposals_resolved_total",
			Help: "Proposals resolved by customers (accepted/rejected).",
		},
		[]string{"outcome"},
	)

	relayedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_messages_total",
			Help: "Messages persisted by the relay, per direction (admin/customer).",
		},
		[]string{"direction"},
	)

	chatSessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_sessions_total",
			Help: "Support chat activations and closures.",
		},
		[]string{"event"},
	)

	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Store orders by lifecycle event (created/paid).",
		},
		[]string{"event"},
	)

	broadcastDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_delivered_total",
			Help: "Broadcast messages successfully copied to customers.",
		},
	)

	rateFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_fallbacks_total",
			Help: "Times the USD-BRL lookup failed and the fixed rate was used.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		budgetsCreated, statusChanges, proposalsResolved,
		relayedMessages, chatSessions, ordersTotal,
		broadcastDelivered, rateFallbacks,
	)
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncBudgetCreated(category string) { budgetsCreated.WithLabelValues(norm(category)).Inc() }

func IncStatusChange(status string) { statusChanges.WithLabelValues(norm(status)).Inc() }

func IncProposalResolved(outcome string) { proposalsResolved.WithLabelValues(norm(outcome)).Inc() }

func IncRelayed(direction string) { relayedMessages.WithLabelValues(norm(direction)).Inc() }

func IncChatSession(event string) { chatSessions.WithLabelValues(norm(event)).Inc() }

func IncOrder(event string) { ordersTotal.WithLabelValues(norm(event)).Inc() }

func AddBroadcastDelivered(n int64) { broadcastDelivered.Add(float64(n)) }

func IncRateFallback() { rateFallbacks.Inc() }
