package approval

import "fmt"

const LabelAwaiting = "Awaiting approval"

func (r *Request) ApprovedCount() int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == StepApproved {
			n++
		}
	}
	return n
}

// DisplayStatus derives the human label for the request. It is computed on
// every read and never stored.
func (r *Request) DisplayStatus() string {
	switch r.Status {
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusCancelled:
		return "Cancelled"
	}
	m := r.ApprovedCount()
	if m == 0 {
		return LabelAwaiting
	}
	return StageCompleteLabel(m)
}

func StageCompleteLabel(n int) string {
	return fmt.Sprintf("%d%s stage complete", n, ordinalSuffix(n))
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	}
	return "th"
}
