// README: The state machine itself: one handler per state, dispatched on the session's current state.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"placepilot/internal/ai"
	"placepilot/internal/places"
)

// Searcher runs a places search for a location and filter set.
type Searcher interface {
	Search(ctx context.Context, loc places.Location, f places.SearchFilters) ([]places.PlaceResult, error)
}

// Submitter sends one suggest-place request.
type Submitter interface {
	Submit(ctx context.Context, s places.Suggestion) error
}

// Geocoder turns a coordinate into a short human area label. A failed
// lookup returns "" and the caller just omits the label.
type Geocoder interface {
	AreaLabel(ctx context.Context, loc places.Location) string
}

// Recorder persists user-profile side effects. Both methods are
// best-effort; failures are logged and never block the conversation.
type Recorder interface {
	SaveLocation(ctx context.Context, chatID int64, loc places.Location) error
	RecordContribution(ctx context.Context, chatID int64, placeName string) error
}

const (
	optionSearch   = "Search for a place"
	optionContrib  = "Add a new place"
	optionCurrent  = "Use current location"
	optionManual   = "Enter coordinates"
	optionAllDay   = "Open 24/7"
	optionCustom   = "Custom Hours"
	optionDone     = "Done"
	callbackYes    = "confirm_yes"
	callbackNo     = "confirm_no"
	maxDraftPhotos = 3
)

type handlerFunc func(ctx context.Context, sess *Session, ev Event) (Reply, error)

// Service drives sessions through the state graph. All collaborators are
// injected so tests can swap in fakes.
type Service struct {
	provider  ai.Provider
	searcher  Searcher
	submitter Submitter
	geocoder  Geocoder
	recorder  Recorder
	store     Store

	webappURL  string
	submitLive bool
	log        *slog.Logger

	handlers map[State]handlerFunc
}

func NewService(provider ai.Provider, searcher Searcher, submitter Submitter, store Store, log *slog.Logger) *Service {
	s := &Service{
		provider:  provider,
		searcher:  searcher,
		submitter: submitter,
		store:     store,
		log:       log,
	}
	s.handlers = map[State]handlerFunc{
		StateStart:             s.handleStart,
		StateLocation:          s.handleLocation,
		StateLocationChoice:    s.handleLocationChoice,
		StateQuery:             s.handleQuery,
		StateRefine:            s.handleRefine,
		StateName:              s.handleName,
		StateCategory:          s.handleCategory,
		StateAddress:           s.handleAddress,
		StateCoordinates:       s.handleCoordinates,
		StateCoordinatesManual: s.handleCoordinatesManual,
		StateContact:           s.handleContact,
		StateHours:             s.handleHours,
		StateCustomHours:       s.handleCustomHours,
		StateAttributes:        s.handleAttributes,
		StatePrivatePlace:      s.handlePrivatePlace,
		StatePhotos:            s.handlePhotos,
		StateConfirm:           s.handleConfirm,
	}
	return s
}

// WithGeocoder adds the optional reverse-geocode label lookup.
func (s *Service) WithGeocoder(g Geocoder) *Service {
	s.geocoder = g
	return s
}

// WithRecorder adds the optional user-profile persistence.
func (s *Service) WithRecorder(r Recorder) *Service {
	s.recorder = r
	return s
}

// WithWebapp sets the list-view base URL used for deep links.
func (s *Service) WithWebapp(baseURL string) *Service {
	s.webappURL = baseURL
	return s
}

// WithLiveSubmission disables dry_run on suggest-place submissions.
func (s *Service) WithLiveSubmission(live bool) *Service {
	s.submitLive = live
	return s
}

// HandleEvent processes one inbound update for a chat and returns the
// outbound reply. The updated session is persisted before returning.
func (s *Service) HandleEvent(ctx context.Context, ev Event) (Reply, error) {
	id := fmt.Sprintf("%d", ev.ChatID)
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return Reply{}, fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		sess = NewSession(id)
	}
	sess.RequestID = ev.RequestID
	log := s.log.With("request_id", ev.RequestID, "chat_id", ev.ChatID, "state", sess.State)

	switch ev.Command {
	case "start":
		// A fresh /start always restarts from scratch.
		sess = NewSession(id)
		sess.RequestID = ev.RequestID
		reply := s.promptLocation(sess, "Hi! I can help you find places nearby or add a new one.")
		return reply, s.store.Put(ctx, sess)
	case "cancel":
		if err := s.store.Delete(ctx, id); err != nil {
			log.Error("delete session", "error", err)
		}
		return textReply("Okay, cancelled. Send /start whenever you want to begin again."), nil
	}

	handler, ok := s.handlers[sess.State]
	if !ok {
		log.Warn("unknown session state, resetting")
		sess = NewSession(id)
		sess.RequestID = ev.RequestID
		handler = s.handleStart
	}

	reply, err := handler(ctx, sess, ev)
	if err != nil {
		return Reply{}, err
	}
	if sess.State == "" {
		// A handler marked the session as finished.
		if err := s.store.Delete(ctx, id); err != nil {
			log.Error("delete session", "error", err)
		}
		return reply, nil
	}
	return reply, s.store.Put(ctx, sess)
}

func (s *Service) endSession(sess *Session) {
	sess.State = ""
}

func (s *Service) promptLocation(sess *Session, intro string) Reply {
	sess.State = StateLocation
	text := "Please share your location so I know where to look."
	if intro != "" {
		text = intro + "\n\n" + text
	}
	return Reply{Messages: []Message{{Text: text, RequestLocation: true}}}
}

func (s *Service) handleStart(_ context.Context, sess *Session, _ Event) (Reply, error) {
	return s.promptLocation(sess, "Hi! I can help you find places nearby or add a new one."), nil
}

func (s *Service) handleLocation(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Location == nil {
		return Reply{Messages: []Message{{Text: "I still need your location. Use the button below to share it.", RequestLocation: true}}}, nil
	}
	sess.Location = ev.Location
	if s.recorder != nil {
		if err := s.recorder.SaveLocation(ctx, ev.ChatID, *ev.Location); err != nil {
			s.log.Error("save user location", "request_id", sess.RequestID, "error", err)
		}
	}

	text := "Got it!"
	if s.geocoder != nil {
		if label := s.geocoder.AreaLabel(ctx, *ev.Location); label != "" {
			text = fmt.Sprintf("Got it, looks like you're around %s.", label)
		}
	}
	sess.State = StateLocationChoice
	return Reply{Messages: []Message{{
		Text:     text + "\n\nWhat would you like to do?",
		Keyboard: []string{optionSearch, optionContrib},
	}}}, nil
}

func (s *Service) handleLocationChoice(_ context.Context, sess *Session, ev Event) (Reply, error) {
	choice := strings.ToLower(ev.Text)
	switch {
	case strings.Contains(choice, "search"):
		sess.State = StateQuery
		return Reply{Messages: []Message{{Text: "What are you looking for? Describe it in your own words, e.g. \"a cheap pizza place open now\".", RemoveKeyboard: true}}}, nil
	case strings.Contains(choice, "add"):
		sess.State = StateName
		return Reply{Messages: []Message{{Text: "Great, let's add a new place. What is it called?", RemoveKeyboard: true}}}, nil
	default:
		return Reply{Messages: []Message{{
			Text:     "Please pick one of the options below.",
			Keyboard: []string{optionSearch, optionContrib},
		}}}, nil
	}
}

func (s *Service) handleQuery(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	result, err := s.provider.ParseSearchFilters(ctx, ev.Text, sess.SearchParams)
	if err != nil {
		s.log.Error("parse search filters", "request_id", sess.RequestID, "error", err)
		result = ai.SearchFilterResult{Filters: places.SearchFilters{Query: strings.TrimSpace(ev.Text)}}
	}
	sess.SearchParams = sess.SearchParams.Merge(result.NormalizedFilters())
	return s.runSearch(ctx, sess)
}

func (s *Service) runSearch(ctx context.Context, sess *Session) (Reply, error) {
	if sess.Location == nil {
		return s.promptLocation(sess, "I lost track of your location."), nil
	}

	results, err := s.searcher.Search(ctx, *sess.Location, sess.SearchParams)
	if err != nil {
		s.log.Error("places search", "request_id", sess.RequestID, "error", err)
		return textReply("Error: something went wrong while searching. Try rephrasing your request."), nil
	}
	if len(results) == 0 {
		sess.State = StateRefine
		return textReply("I couldn't find anything matching that. Try loosening a filter, or say 'no' to finish."), nil
	}

	s.rankResults(ctx, sess, results)

	header, err := s.provider.ResultsHeader(ctx, sess.SearchParams)
	if err != nil || header == "" {
		header = "Here's what I found:"
	}

	var reply Reply
	reply.add(Message{Text: places.FormatResults(header, results), HTML: true})
	if s.webappURL != "" {
		if link, err := places.DeepLink(s.webappURL, results); err == nil {
			reply.add(Message{
				Text: fmt.Sprintf(`<a href="%s">Open the full list with photos</a>`, link),
				HTML: true,
			})
		}
	}

	refine, err := s.provider.RefinePrompt(ctx, sess.SearchParams)
	if err != nil || refine == "" {
		refine = "Want to narrow it down? Tell me more filters, or say 'no' to finish."
	}
	reply.add(Message{Text: refine})

	sess.State = StateRefine
	return reply, nil
}

// rankResults applies the model's preferred order when it covers every
// result exactly once; otherwise the deterministic sort stands.
func (s *Service) rankResults(ctx context.Context, sess *Session, results []places.PlaceResult) {
	places.SortByRatingDistance(results)

	order, err := s.provider.RankResults(ctx, sess.SearchParams.Query, results)
	if err != nil || len(order) != len(results) {
		return
	}
	byID := make(map[string]places.PlaceResult, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}
	reordered := make([]places.PlaceResult, 0, len(results))
	for _, id := range order {
		r, ok := byID[id]
		if !ok {
			return
		}
		delete(byID, id)
		reordered = append(reordered, r)
	}
	copy(results, reordered)
}

func (s *Service) handleRefine(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	intent, err := s.provider.ClassifyRefineIntent(ctx, ev.Text)
	if err != nil {
		intent = ai.IntentRefine
	}
	if intent == ai.IntentEnd {
		s.endSession(sess)
		return textReply("Happy to help! Send /start whenever you want to search again."), nil
	}
	return s.handleQuery(ctx, sess, ev)
}

func (s *Service) handleName(_ context.Context, sess *Session, ev Event) (Reply, error) {
	name := strings.TrimSpace(ev.Text)
	if name == "" {
		return textReply("The place needs a name. What is it called?"), nil
	}
	sess.Draft.Name = name
	sess.State = StateCategory
	return textReply(fmt.Sprintf(
		"What kind of place is %s? You can name several, e.g. \"arcade, bar\". Known categories: %s. Send /skip to leave it out.",
		name, strings.Join(places.CategoryNames(), ", "),
	)), nil
}

func (s *Service) handleCategory(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Command == "skip" {
		sess.State = StateAddress
		return textReply(addressPrompt), nil
	}

	names, err := s.provider.ExtractCategoryNames(ctx, ev.Text)
	if err != nil || len(names) == 0 {
		return textReply("I couldn't pick a category out of that. Try something like \"coffee shop\" or \"bar\"."), nil
	}
	ids, unknown := places.ResolveCategories(names)
	if len(unknown) > 0 {
		return textReply(fmt.Sprintf(
			"I don't recognize: %s. Known categories are: %s. Try again or send /skip.",
			strings.Join(unknown, ", "), strings.Join(places.CategoryNames(), ", "),
		)), nil
	}
	sess.Draft.CategoryIDs = ids
	sess.Draft.CategoryNames = names
	sess.State = StateAddress
	return textReply(addressPrompt), nil
}

const addressPrompt = "What's the address? Include the city and country, e.g. \"12 Baker Street, London, UK\"."

func (s *Service) handleAddress(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	info, err := s.provider.ParseAddress(ctx, ev.Text)
	if err != nil {
		s.log.Error("parse address", "request_id", sess.RequestID, "error", err)
		return textReply("I couldn't read that address. " + addressPrompt), nil
	}
	if !info.IsValid || info.CountryCode == "" {
		hint := info.Explanation
		if hint == "" {
			hint = "I need at least a street and a recognizable city or country."
		}
		return textReply(hint + "\n" + addressPrompt), nil
	}
	sess.Draft.Address = info.Address
	sess.Draft.Locality = info.Locality
	sess.Draft.Region = info.Region
	sess.Draft.Postcode = info.Postcode
	sess.Draft.CountryCode = info.CountryCode
	sess.State = StateCoordinates
	return Reply{Messages: []Message{{
		Text:     "Where exactly is it? Coordinates are required.",
		Keyboard: []string{optionCurrent, optionManual},
	}}}, nil
}

func (s *Service) handleCoordinates(_ context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Command == "skip" {
		return Reply{Messages: []Message{{
			Text:     "Coordinates are required for a new place, so I can't skip this one.",
			Keyboard: []string{optionCurrent, optionManual},
		}}}, nil
	}
	choice := strings.ToLower(ev.Text)
	switch {
	case strings.Contains(choice, "current"):
		if sess.Location == nil {
			return Reply{Messages: []Message{{
				Text:     "I don't have your location anymore; enter the coordinates instead.",
				Keyboard: []string{optionManual},
			}}}, nil
		}
		lat, lng := sess.Location.Latitude, sess.Location.Longitude
		sess.Draft.Latitude = &lat
		sess.Draft.Longitude = &lng
		sess.Draft.CoordsFromLocation = true
		sess.State = StateContact
		return textReply(contactPrompt), nil
	case strings.Contains(choice, "enter"), strings.Contains(choice, "coordinates"):
		sess.State = StateCoordinatesManual
		return Reply{Messages: []Message{{Text: "Send the coordinates as \"latitude,longitude\", e.g. \"40.7580,-73.9855\".", RemoveKeyboard: true}}}, nil
	default:
		return Reply{Messages: []Message{{
			Text:     "Please choose one of the options below.",
			Keyboard: []string{optionCurrent, optionManual},
		}}}, nil
	}
}

func (s *Service) handleCoordinatesManual(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	coords, err := s.provider.ParseCoordinates(ctx, ev.Text)
	if err != nil {
		s.log.Error("parse coordinates", "request_id", sess.RequestID, "error", err)
		return textReply("I couldn't read those coordinates. Send them as \"latitude,longitude\"."), nil
	}
	if !coords.IsValid {
		return textReply("That doesn't look like a coordinate pair. Send them as \"latitude,longitude\"."), nil
	}
	if coords.Latitude < -90 || coords.Latitude > 90 || coords.Longitude < -180 || coords.Longitude > 180 {
		return textReply("Those coordinates are out of range: latitude must be between -90 and 90, longitude between -180 and 180."), nil
	}
	lat, lng := coords.Latitude, coords.Longitude
	sess.Draft.Latitude = &lat
	sess.Draft.Longitude = &lng
	sess.Draft.CoordsFromLocation = false
	sess.State = StateContact
	return textReply(contactPrompt), nil
}

const contactPrompt = "Any contact details? Phone, website, email or social handles in one message, or /skip."

func (s *Service) handleContact(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Command == "skip" {
		sess.State = StateHours
		return s.hoursPrompt(), nil
	}
	info, err := s.provider.ParseContactInfo(ctx, ev.Text)
	if err != nil {
		s.log.Error("parse contact", "request_id", sess.RequestID, "error", err)
		return textReply("I couldn't read those contact details. " + contactPrompt), nil
	}
	if !info.IsValid {
		hint := info.Explanation
		if hint == "" {
			hint = "I couldn't identify any contact field in that."
		}
		return textReply(hint + "\n" + contactPrompt), nil
	}
	sess.Draft.Tel = info.Phone
	sess.Draft.Website = info.Website
	sess.Draft.Email = info.Email
	sess.Draft.FacebookURL = info.FacebookURL
	sess.Draft.Instagram = info.Instagram
	sess.Draft.Twitter = info.Twitter
	sess.State = StateHours
	return s.hoursPrompt(), nil
}

func (s *Service) hoursPrompt() Reply {
	return Reply{Messages: []Message{{
		Text:     "When is it open? Pick an option, or /skip.",
		Keyboard: []string{optionAllDay, optionCustom},
	}}}
}

func (s *Service) handleHours(_ context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Command == "skip" {
		sess.State = StateAttributes
		return s.attributesPrompt(), nil
	}
	choice := strings.ToLower(ev.Text)
	switch {
	case strings.Contains(choice, "24"):
		// The all-day schedule is synthesized locally, no parsing.
		sess.Draft.Hours = places.AllDayHours
		sess.State = StateAttributes
		return s.attributesPrompt(), nil
	case strings.Contains(choice, "custom"):
		sess.State = StateCustomHours
		return Reply{Messages: []Message{{Text: "Describe the hours in your own words, e.g. \"Mon-Sat 9am to 6pm\", or /skip.", RemoveKeyboard: true}}}, nil
	default:
		return s.hoursPrompt(), nil
	}
}

func (s *Service) handleCustomHours(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Command == "skip" {
		sess.State = StateAttributes
		return s.attributesPrompt(), nil
	}
	result, err := s.provider.ParseHoursToAPI(ctx, ev.Text)
	if err != nil {
		s.log.Error("parse hours", "request_id", sess.RequestID, "error", err)
		return textReply("I couldn't work out those hours. Try something like \"Mon-Fri 9am-6pm\", or /skip."), nil
	}
	if !result.IsValid || result.Hours == "" {
		hint := result.Explanation
		if hint == "" {
			hint = "I couldn't work out those hours."
		}
		return textReply(hint + "\nTry something like \"Mon-Fri 9am-6pm\", or /skip."), nil
	}
	sess.Draft.Hours = result.Hours

	confirmation := "Noted."
	if human, err := s.provider.ParseHours(ctx, ev.Text); err == nil && human.IsValid && human.NormalizedHours != "" {
		confirmation = "Noted: " + human.NormalizedHours
	}
	sess.State = StateAttributes
	reply := s.attributesPrompt()
	reply.Messages = append([]Message{{Text: confirmation}}, reply.Messages...)
	return reply, nil
}

func (s *Service) attributesPrompt() Reply {
	return Reply{Messages: []Message{{
		Text:     "Which of these does the place offer? Tap all that apply, then tap Done.",
		Keyboard: append(places.AttributeLabels(), optionDone),
	}}}
}

func (s *Service) handleAttributes(_ context.Context, sess *Session, ev Event) (Reply, error) {
	if strings.EqualFold(strings.TrimSpace(ev.Text), optionDone) || ev.Command == "done" {
		sess.State = StatePrivatePlace
		return Reply{Messages: []Message{{
			Text:     "Is this a private place (not open to the general public)? Reply Yes or No, or /skip.",
			Keyboard: []string{"Yes", "No"},
		}}}, nil
	}
	token, ok := places.AttributeToken(ev.Text)
	if !ok {
		// Unrecognized labels are dropped without comment.
		return s.attributesPrompt(), nil
	}
	for _, existing := range sess.Draft.Attributes {
		if existing == token {
			return s.attributesPrompt(), nil
		}
	}
	sess.Draft.Attributes = append(sess.Draft.Attributes, token)
	return Reply{Messages: []Message{{
		Text:     fmt.Sprintf("Added %s. Tap more, or Done when finished.", strings.TrimSpace(ev.Text)),
		Keyboard: append(places.AttributeLabels(), optionDone),
	}}}, nil
}

func (s *Service) handlePrivatePlace(_ context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Command == "skip" {
		sess.State = StatePhotos
		return s.photosPrompt(), nil
	}
	switch strings.ToLower(strings.TrimSpace(ev.Text)) {
	case "yes":
		v := true
		sess.Draft.IsPrivate = &v
	case "no":
		v := false
		sess.Draft.IsPrivate = &v
	default:
		return Reply{Messages: []Message{{
			Text:     "Please reply Yes or No, or /skip.",
			Keyboard: []string{"Yes", "No"},
		}}}, nil
	}
	sess.State = StatePhotos
	return s.photosPrompt(), nil
}

func (s *Service) photosPrompt() Reply {
	return Reply{Messages: []Message{{
		Text:           fmt.Sprintf("Send up to %d photos of the place. /done when finished, or /skip.", maxDraftPhotos),
		RemoveKeyboard: true,
	}}}
}

func (s *Service) handlePhotos(_ context.Context, sess *Session, ev Event) (Reply, error) {
	if ev.Command == "skip" || ev.Command == "done" {
		return s.confirmPrompt(sess), nil
	}
	if ev.PhotoID == "" {
		return textReply(fmt.Sprintf("Send a photo, or /done to continue (%d of %d so far).", len(sess.Draft.Photos), maxDraftPhotos)), nil
	}
	sess.Draft.Photos = append(sess.Draft.Photos, ev.PhotoID)
	if len(sess.Draft.Photos) >= maxDraftPhotos {
		return s.confirmPrompt(sess), nil
	}
	return textReply(fmt.Sprintf("Got it (%d of %d). Send another, or /done.", len(sess.Draft.Photos), maxDraftPhotos)), nil
}

func (s *Service) confirmPrompt(sess *Session) Reply {
	sess.State = StateConfirm
	return Reply{Messages: []Message{{
		Text:           "Here's what I have:\n\n" + sess.Draft.Summary() + "\n\nSubmit it?",
		RemoveKeyboard: true,
		Inline: []Button{
			{Label: "Submit", Data: callbackYes},
			{Label: "Start over", Data: callbackNo},
		},
	}}}
}

func (s *Service) handleConfirm(ctx context.Context, sess *Session, ev Event) (Reply, error) {
	switch ev.Callback {
	case callbackYes:
		suggestion := sess.Draft.Suggestion(!s.submitLive)
		if err := s.submitter.Submit(ctx, suggestion); err != nil {
			s.log.Error("suggest place", "request_id", sess.RequestID, "error", err)
			s.endSession(sess)
			return textReply("Your suggestion could not be processed right now. Please try again later."), nil
		}
		if s.recorder != nil {
			if err := s.recorder.RecordContribution(ctx, ev.ChatID, sess.Draft.Name); err != nil {
				s.log.Error("record contribution", "request_id", sess.RequestID, "error", err)
			}
		}
		name := sess.Draft.Name
		s.endSession(sess)
		return textReply(fmt.Sprintf("Thanks! %s has been submitted for review.", name)), nil
	case callbackNo:
		fresh := NewSession(sess.ID)
		fresh.RequestID = sess.RequestID
		*sess = *fresh
		return s.promptLocation(sess, "No problem, let's start over."), nil
	default:
		return s.confirmPrompt(sess), nil
	}
}
