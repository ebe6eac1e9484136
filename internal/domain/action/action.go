// Package action encodes and parses the callback payloads attached to inline
// buttons. Payloads are positional, colon-joined, and parsed by prefix; each
// dynamic argument is percent-escaped so embedded colons round-trip intact.
package action

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain"
)

type Kind string

// Parameterized payload kinds. Parameterless buttons (main menu, store root,
// yes/no answers) are matched verbatim by the adapter's route table and never
// go through this codec.
const (
	KindStatus         Kind = "status"          // status:<budgetID>:<STATUS>
	KindAcceptProposal Kind = "accept_proposal" // accept_proposal:<budgetID>:<value>
	KindRejectProposal Kind = "reject_proposal" // reject_proposal:<budgetID>
	KindStartChat      Kind = "start_chat"      // start_chat:<budgetID>
	KindEndChat        Kind = "end_chat"        // end_chat:<budgetID>
	KindViewBudget     Kind = "view_budget"     // view_budget:<budgetID>
	KindPropose        Kind = "propose"         // propose:<budgetID>
	KindAnalyzeBudget  Kind = "analyze_budget"  // analyze_budget:<budgetID>
	KindStoreCategory  Kind = "category"        // category:<CATEGORY>
	KindViewProduct    Kind = "view_product"    // view_product:<productID>
	KindBuyProduct     Kind = "buy_product"     // buy_product:<productID>
	KindEditProduct    Kind = "edit_product"    // edit_product:<productID>
	KindDeleteProduct  Kind = "delete_product"  // delete_product:<productID>
	KindConfirmDelete  Kind = "confirm_delete"  // confirm_delete:<productID>
)

// arity is fixed per kind; Parse refuses payloads with the wrong shape.
var arity = map[Kind]int{
	KindStatus:         2,
	KindAcceptProposal: 2,
	KindRejectProposal: 1,
	KindStartChat:      1,
	KindEndChat:        1,
	KindViewBudget:     1,
	KindPropose:        1,
	KindAnalyzeBudget:  1,
	KindStoreCategory:  1,
	KindViewProduct:    1,
	KindBuyProduct:     1,
	KindEditProduct:    1,
	KindDeleteProduct:  1,
	KindConfirmDelete:  1,
}

// Encode builds a payload string for the given kind. Arguments are escaped
// individually; the kind itself is a fixed literal and stays unescaped.
func Encode(kind Kind, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, string(kind))
	for _, a := range args {
		parts = append(parts, url.QueryEscape(a))
	}
	return strings.Join(parts, ":")
}

// Parse splits a payload back into its kind and unescaped arguments.
// Unknown kinds and wrong arities return ErrInvalidArgument.
func Parse(payload string) (Kind, []string, error) {
	parts := strings.Split(payload, ":")
	kind := Kind(parts[0])
	want, ok := arity[kind]
	if !ok {
		return "", nil, fmt.Errorf("parse action %q: unknown kind: %w", payload, domain.ErrInvalidArgument)
	}
	if len(parts)-1 != want {
		return "", nil, fmt.Errorf("parse action %q: want %d args, got %d: %w", payload, want, len(parts)-1, domain.ErrInvalidArgument)
	}
	args := make([]string, 0, want)
	for _, p := range parts[1:] {
		a, err := url.QueryUnescape(p)
		if err != nil {
			return "", nil, fmt.Errorf("parse action %q: %v: %w", payload, err, domain.ErrInvalidArgument)
		}
		args = append(args, a)
	}
	return kind, args, nil
}

// HasKind reports whether the payload starts with the given parameterized
// kind. Used by the adapter's prefix routing before a full Parse.
func HasKind(payload string, kind Kind) bool {
	return strings.HasPrefix(payload, string(kind)+":")
}
