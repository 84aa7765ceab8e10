package actor

// HandleRecipientMoved implements the default RecipientMoved handling
// contract described in spec.md §6: update any field of a that stores rm.Old
// to rm.New, then resend rm.Original to rm.New. Fields are only rewritten
// if a implements AddressHolder; the resend happens either way.
//
// If rm.New is the null address (the target was never resolvable, not
// merely relocated), the original message is not resent — there is nowhere
// to send it.
func HandleRecipientMoved(a Actor, svc Service, rm RecipientMoved) {
	if holder, ok := a.(AddressHolder); ok {
		for _, field := range holder.StoredAddresses() {
			if *field == rm.Old {
				*field = rm.New
			}
		}
	}

	if rm.New.IsNull() {
		return
	}

	me := a.Core().Address()
	svc.Send(me, rm.New, rm.Original.Body, energyOf(rm.Original)...)
}

func energyOf(msg Message) []float32 {
	if msg.EnergyOverride == nil {
		return nil
	}
	return []float32{*msg.EnergyOverride}
}
