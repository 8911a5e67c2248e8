package regnode

import "math/rand"

// Env maps a node identifier to the value computed for it earlier in the
// same evaluation. One Env belongs to exactly one top-level Evaluate call;
// independent evaluations must not share one unless cross-operation value
// sharing is deliberately wanted.
type Env map[int64]uint64

// Evaluate computes a concrete 64-bit value for the tree.
//
// CALL and NUM_TYPE leaves stand for values static analysis cannot know;
// they draw a uniformly random witness from rng so repeated evaluations
// explore the reachable value space. ARG realizes exactly one child,
// chosen at random, without touching its siblings. PHI and SELECT evaluate
// every child in order, accumulating all identifier bindings, then pick one
// of the collected results at random. The asymmetry is deliberate: it
// determines which identifiers end up bound in env.
//
// After any node's value is computed, a carried identifier is bound in env
// before returning, for leaves and interior nodes alike. Environment
// updates are sequenced left before right, so a binding made in a left
// operand is visible while evaluating the right one.
//
// rng must not be nil; it is an explicit parameter so evaluation is
// reproducible under a fixed seed and safe to run concurrently with one
// rng per call. A nil env is treated as empty.
func Evaluate(n *Node, env Env, rng *rand.Rand) (uint64, error) {
	if env == nil {
		env = Env{}
	}
	return eval(n, env, rng, 0)
}

func eval(n *Node, env Env, rng *rand.Rand, depth int) (uint64, error) {
	if depth > MaxDepth {
		return 0, ErrDepthExceeded
	}
	if n == nil {
		return 0, nil
	}

	var result uint64

	switch n.Kind {
	case KindConstant:
		result = n.Value

	case KindCall, KindNumType:
		result = rng.Uint64()

	case KindCommon:
		v, ok := env[n.ID]
		if !n.HasID || !ok {
			return 0, &UnresolvedReferenceError{ID: n.ID}
		}
		result = v

	case KindArg:
		if len(n.Children) == 0 {
			return 0, &ArityError{Kind: n.Kind, Want: 1, Got: 0}
		}
		chosen := n.Children[rng.Intn(len(n.Children))]
		v, err := eval(chosen, env, rng, depth+1)
		if err != nil {
			return 0, err
		}
		result = v

	case KindAdd, KindAnd, KindOr, KindShl, KindLshr:
		if len(n.Children) != 2 {
			return 0, &ArityError{Kind: n.Kind, Want: 2, Got: len(n.Children)}
		}
		left, err := eval(n.Children[0], env, rng, depth+1)
		if err != nil {
			return 0, err
		}
		right, err := eval(n.Children[1], env, rng, depth+1)
		if err != nil {
			return 0, err
		}
		result = applyBinary(n.Kind, left, right)

	case KindPhi, KindSelect:
		if len(n.Children) == 0 {
			return 0, &ArityError{Kind: n.Kind, Want: 1, Got: 0}
		}
		results := make([]uint64, len(n.Children))
		for i, c := range n.Children {
			v, err := eval(c, env, rng, depth+1)
			if err != nil {
				return 0, err
			}
			results[i] = v
		}
		result = results[rng.Intn(len(results))]

	default:
		return 0, &UnknownKindError{Kind: n.Kind}
	}

	if n.HasID {
		env[n.ID] = result
	}
	return result, nil
}

// applyBinary implements the 64-bit numeric rules: addition wraps modulo
// 2^64, shifts mask the amount to the low 6 bits so it never reaches the
// operand width.
func applyBinary(k Kind, left, right uint64) uint64 {
	switch k {
	case KindAdd:
		return left + right
	case KindAnd:
		return left & right
	case KindOr:
		return left | right
	case KindShl:
		return left << (right & 0x3f)
	case KindLshr:
		return left >> (right & 0x3f)
	}
	return 0
}
