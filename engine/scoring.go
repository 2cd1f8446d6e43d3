package engine

// Show and pegging scorers. These are pure functions over card slices;
// only fifteens, pairs, and runs are scored — flush and the
// jack-matches-starter bonus are not part of this ruleset.

// CountFifteens scores 2 points for every distinct non-empty subset of
// the cards whose values sum to 15. n is at most 5, so enumerating the
// 2^n-1 subsets with a bitmask is exact and cheap.
func CountFifteens(cards []Card) int {
	n := len(cards)
	count := 0
	for mask := 1; mask < 1<<n; mask++ {
		sum := 0
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sum += cards[i].Value()
			}
		}
		if sum == 15 {
			count++
		}
	}
	return count * 2
}

// CountPairs scores 2 points per pair: a rank held k times yields
// 2*C(k,2) (pair=2, triple=6, quad=12).
func CountPairs(cards []Card) int {
	var byRank [13]int
	for _, c := range cards {
		byRank[c.Rank()]++
	}
	points := 0
	for _, k := range byRank {
		points += k * (k - 1) // 2 * C(k,2)
	}
	return points
}

// CountRuns scores runs of 3 or more consecutive distinct orders. Only
// the maximal-length segments count, and each scores its length times
// the product of the rank multiplicities inside it — that product is
// what makes a double run of three worth 6.
func CountRuns(cards []Card) int {
	if len(cards) < 3 {
		return 0
	}
	var mult [15]int // indexed by order 1..13
	for _, c := range cards {
		mult[c.Order()]++
	}

	type segment struct{ start, length int }
	var segments []segment
	maxLen := 0
	for o := 1; o <= 13; {
		if mult[o] == 0 {
			o++
			continue
		}
		start := o
		for o <= 13 && mult[o] > 0 {
			o++
		}
		length := o - start
		if length >= 3 {
			segments = append(segments, segment{start, length})
			if length > maxLen {
				maxLen = length
			}
		}
	}

	points := 0
	for _, seg := range segments {
		if seg.length != maxLen {
			continue
		}
		multiplier := 1
		for o := seg.start; o < seg.start+seg.length; o++ {
			multiplier *= mult[o]
		}
		points += seg.length * multiplier
	}
	return points
}

// ScoreShowCards scores a hand (or the crib) together with the starter:
// fifteens + pairs + runs.
func ScoreShowCards(cards []Card) int {
	if len(cards) == 0 {
		return 0
	}
	return CountFifteens(cards) + CountPairs(cards) + CountRuns(cards)
}

// ScorePeggingPlay scores the card just appended to the pegging
// sequence, given the running total after the play.
//
// Unlike the show scorer, the trailing-run check awards only the single
// longest contiguous window and applies no multiplicity multiplier.
// That asymmetry is deliberate and diverges from some canonical rule
// variants; confirm intent before changing it.
func ScorePeggingPlay(seq []Card, total int) int {
	points := 0
	if total == 15 || total == PeggingCap {
		points += 2
	}

	// Trailing pair streak: m consecutive same-rank cards from the end
	// score 2*(m-1).
	if n := len(seq); n >= 2 {
		last := seq[n-1].Rank()
		streak := 1
		for i := n - 2; i >= 0 && seq[i].Rank() == last; i-- {
			streak++
		}
		if streak >= 2 {
			points += 2 * (streak - 1)
		}
	}

	// Trailing run: widest window first, stop at the first window whose
	// orders form a contiguous range of distinct values.
	for length := len(seq); length >= 3; length-- {
		tail := seq[len(seq)-length:]
		var seen [15]bool
		lo, hi := 14, 0
		distinct := true
		for _, c := range tail {
			o := c.Order()
			if seen[o] {
				distinct = false
				break
			}
			seen[o] = true
			if o < lo {
				lo = o
			}
			if o > hi {
				hi = o
			}
		}
		if distinct && hi-lo+1 == length {
			points += length
			break
		}
	}
	return points
}
