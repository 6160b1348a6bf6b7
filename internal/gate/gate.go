package gate

// #region reduce
// Reduce is the launch-gate transition function. It never performs I/O;
// the returned effects are executed by the caller in order.
func Reduce(s State, intent Intent) (State, []Effect) {
	switch in := intent.(type) {
	case RequestFetch:
		if s.IsFetching || s.Terminating {
			return s, nil
		}
		s.IsFetching = true
		s.Generation++
		return s, []Effect{CallFetch{Request: s.Generation}}

	case FetchSucceeded:
		if !s.AcceptsResult(in.Request) || in.Status == nil {
			return s, nil
		}
		s.IsFetching = false
		s.Status = in.Status
		return classify(s, in.Status), nil

	case FetchFailed:
		if !s.AcceptsResult(in.Request) {
			return s, nil
		}
		s.IsFetching = false
		s.FetchErrorAlert = &Alert{
			Title:   s.DefaultText.FetchError.Title,
			Message: in.Message,
			Buttons: []AlertButton{
				{Label: s.DefaultText.FetchError.Done, Role: RoleDefault, Intent: FetchErrorAlertDismissed{}},
			},
		}
		return s, nil

	case ForceAlertDismissed:
		forced, ok := s.Status.(ForcedUpdateRequired)
		if !ok {
			return s, nil
		}
		s.Terminating = true
		return s, []Effect{
			OpenURL{URL: forced.ConfirmLinkURL},
			ScheduleTerminate{Delay: TerminateDelay},
		}

	case OptionalAlertDismissed:
		s.OptionalUpdateAlert = nil
		return s, nil

	case OptionalAlertConfirmed:
		optional, ok := s.Status.(OptionalUpdateRequired)
		if !ok {
			return s, nil
		}
		url := in.URL
		if url == "" {
			url = optional.ConfirmLinkURL
		}
		return s, []Effect{OpenURL{URL: url}}

	case FetchErrorAlertDismissed:
		s.FetchErrorAlert = nil
		return s, []Effect{EmitFetch{}}

	case NoticeAlertDismissed:
		s.NoticeAlert = nil
		notice, ok := s.Status.(Notice)
		if !ok {
			return s, nil
		}
		var effects []Effect
		if notice.DoneURL != "" {
			effects = append(effects, OpenURL{URL: notice.DoneURL})
		}
		if notice.IsAppTerminated {
			s.Terminating = true
			effects = append(effects, ScheduleTerminate{Delay: TerminateDelay})
		}
		return s, effects
	}

	// Unknown intent, stay put
	return s, nil
}

// AcceptsResult reports whether a fetch result for request belongs to the in-flight fetch.
// Late results from a superseded request are dropped.
func (s State) AcceptsResult(request uint64) bool {
	return s.IsFetching && request == s.Generation
}

// #endregion reduce

// #region classify
// classify updates exactly one alert slot and/or visibility for a fetched status.
func classify(s State, status AppUpdateStatus) State {
	text := s.DefaultText

	switch st := status.(type) {
	case Valid:
		s.ContentVisible = true

	case ForcedUpdateRequired:
		s.ForceUpdateAlert = &Alert{
			Title:   orDefault(st.Title, text.ForceUpdate.Title),
			Message: orDefault(st.Message, text.ForceUpdate.Message),
			Buttons: []AlertButton{
				{Label: text.ForceUpdate.Done, Role: RoleDefault, Intent: ForceAlertDismissed{}},
			},
		}

	case OptionalUpdateRequired:
		s.ContentVisible = true
		s.OptionalUpdateAlert = &Alert{
			Title:   orDefault(st.Title, text.OptionalUpdate.Title),
			Message: orDefault(st.Message, text.OptionalUpdate.Message),
			Buttons: []AlertButton{
				{Label: text.OptionalUpdate.Cancel, Role: RoleCancel, Intent: OptionalAlertDismissed{}},
				{Label: text.OptionalUpdate.Done, Role: RoleDefault, Intent: OptionalAlertConfirmed{URL: st.ConfirmLinkURL}},
			},
		}

	case Notice:
		if !st.IsAppTerminated {
			s.ContentVisible = true
		}
		s.NoticeAlert = &Alert{
			Title:   orDefault(st.Title, text.Notice.Title),
			Message: orDefault(st.Message, text.Notice.Message),
			Buttons: []AlertButton{
				{Label: text.Notice.Done, Role: RoleDefault, Intent: NoticeAlertDismissed{}},
			},
		}
	}

	return s
}

// orDefault keeps a non-empty payload field, otherwise uses the configured default.
func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// #endregion classify

// #region apply
// Apply folds intents through Reduce, collecting every effect in order.
// EmitFetch is returned like any other effect; it is not re-fed.
func Apply(s State, intents ...Intent) (State, []Effect) {
	var all []Effect
	for _, in := range intents {
		var effects []Effect
		s, effects = Reduce(s, in)
		all = append(all, effects...)
	}
	return s, all
}

// #endregion apply
