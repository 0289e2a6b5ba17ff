package listpane

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"notepane/internal/common"
	"notepane/internal/config"
	"notepane/internal/log"
	"notepane/internal/sched"
	"notepane/internal/search"
	"notepane/internal/ui"
	"notepane/internal/ui/components"
	"notepane/internal/vault"
)

// ── Messages ────────────────────────────────────────────────────────────────

// searchSettledMsg is posted by the debounce timer; gen identifies the
// edit it belongs to so stale timers are ignored on the event loop.
type searchSettledMsg struct{ gen uint64 }

// openRequestMsg is posted when the navigation engine commits an open.
// The actual opener call happens on the event loop, never on the timer
// goroutine.
type openRequestMsg struct {
	file *vault.FileRef
	opts vault.OpenOptions
}

// previewContentMsg delivers note content for the preview pane.
type previewContentMsg struct {
	path    string
	content string
	err     error
}

// ── Controller ──────────────────────────────────────────────────────────────

// SelectOptions qualify a programmatic selection change.
type SelectOptions struct {
	KeyboardNavigation bool
	UserSelection      bool
	SuppressOpen       bool
	DebounceOpen       bool
	Align              Align
}

// Controller is the list pane view: it owns the builder, virtualizer,
// selection coordinator, navigation engine and search orchestrator, and
// translates bubbletea input into their operations.
type Controller struct {
	styles ui.Styles
	cfg    *config.Config
	keys   config.KeyBindings

	svc    vault.Service
	opener vault.Opener

	builder *Builder
	virt    *Virtualizer
	sel     *Coordinator
	engine  *Engine
	orch    *search.Orchestrator

	scope  vault.Scope
	result BuildResult
	total  int // notes in scope before search filtering

	input        textinput.Model
	preview      viewport.Model
	previewPath  string
	previewFocus bool

	width, height         int
	listWidth, listHeight int

	notify func(tea.Msg)
	now    func() time.Time

	message  string
	msgIsErr bool
}

// NewController wires the full list pane. timers drives both debounce
// pipelines; production passes sched.NewTimers().
func NewController(cfg *config.Config, keys config.KeyBindings, styles ui.Styles, svc vault.Service, opener vault.Opener, timers sched.Scheduler) *Controller {
	c := &Controller{
		styles: styles,
		cfg:    cfg,
		keys:   keys,
		svc:    svc,
		opener: opener,
		now:    time.Now,
	}

	sort := ParseSortOption(cfg.SortOption)
	c.builder = NewBuilder(svc, sort, ParseGroupMode(cfg.GroupMode), cfg.PinnedScopeOnly)
	for key, val := range cfg.SortOverrides {
		c.builder.SetSortOverride(key, ParseSortOption(val))
	}

	c.virt = NewVirtualizer(c.estimateRow, cfg.Overscan)
	c.sel = NewCoordinator()

	c.engine = NewEngine(timers, time.Duration(cfg.OpenDebounceMs)*time.Millisecond,
		func(f *vault.FileRef, opts vault.OpenOptions) {
			c.post(openRequestMsg{file: f, opts: opts})
		})
	c.engine.SetEnterToOpen(cfg.EnterToOpen)

	c.orch = search.NewOrchestrator(timers, time.Duration(cfg.SearchDebounceMs)*time.Millisecond)
	c.orch.SetNotify(func(gen uint64) { c.post(searchSettledMsg{gen: gen}) })

	c.input = textinput.New()
	c.input.Prompt = "/ "
	c.input.Placeholder = "search notes, #tag, [key:value], @today"
	c.input.CharLimit = 256

	c.preview = viewport.New(0, 0)

	c.scope = vault.Scope{
		Kind:               vault.ScopeFolder,
		IncludeDescendants: cfg.IncludeDescendants,
		ShowHidden:         cfg.ShowHidden,
	}
	c.sel.SetFolderChangeWithAutoSelect(cfg.AutoSelectFirst)
	c.rebuild()
	return c
}

// SetNotify installs the program's Send function. Timer callbacks use it
// to post back onto the event loop; it must be set before input arrives.
func (c *Controller) SetNotify(fn func(tea.Msg)) { c.notify = fn }

func (c *Controller) post(msg tea.Msg) {
	if c.notify != nil {
		c.notify(msg)
	}
}

// ── View interface ──────────────────────────────────────────────────────────

// Init implements common.View.
func (c *Controller) Init() tea.Cmd { return textinput.Blink }

// SetSize implements common.View.
func (c *Controller) SetSize(width, height int) {
	c.width = width
	c.height = height

	c.listWidth = width
	if c.cfg.ShowPreview && width >= 80 {
		c.listWidth = width * 2 / 5
	}

	// One header line, one search line when the bar is shown.
	c.listHeight = height - 1
	if c.searchBarVisible() {
		c.listHeight--
	}
	if c.listHeight < 1 {
		c.listHeight = 1
	}
	c.virt.SetViewportHeight(c.listHeight)

	pw := width - c.listWidth - 1
	if pw < 0 {
		pw = 0
	}
	c.preview.Width = pw
	c.preview.Height = height - 1
	c.input.Width = c.listWidth - 4
}

// InputCapture implements common.View.
func (c *Controller) InputCapture() bool { return c.input.Focused() }

// ShortHelp implements common.View.
func (c *Controller) ShortHelp() []components.HelpEntry {
	k := c.keys
	return []components.HelpEntry{
		{Key: k.Up + "/↑", Desc: "previous note", Section: "Navigate"},
		{Key: k.Down + "/↓", Desc: "next note", Section: "Navigate"},
		{Key: k.PageUp + "/" + k.PageDown, Desc: "page up / down", Section: "Navigate"},
		{Key: k.Home + "/" + k.End, Desc: "first / last note", Section: "Navigate"},
		{Key: k.Enter, Desc: "open note", Section: "Open"},
		{Key: k.OpenInEditor, Desc: "open in editor", Section: "Open"},
		{Key: k.Space, Desc: "toggle selection", Section: "Select"},
		{Key: k.ExtendUp + "/" + k.ExtendDown, Desc: "extend selection", Section: "Select"},
		{Key: k.ClearSearch, Desc: "clear selection / search", Section: "Select"},
		{Key: k.Search, Desc: "search", Section: "Search"},
		{Key: k.TogglePin, Desc: "pin / unpin note", Section: "Notes"},
		{Key: k.ToggleHidden, Desc: "show hidden notes", Section: "Notes"},
		{Key: k.CycleSort, Desc: "cycle sort order", Section: "Notes"},
		{Key: k.CycleGroup, Desc: "cycle grouping", Section: "Notes"},
		{Key: k.DailyNote, Desc: "today's daily note", Section: "Notes"},
		{Key: k.Refresh, Desc: "reindex vault", Section: "General"},
	}
}

// Update implements common.View.
func (c *Controller) Update(msg tea.Msg) (common.View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return c, c.handleKey(msg)

	case tea.MouseMsg:
		return c, c.handleMouse(msg)

	case common.RefreshMsg:
		if err := c.svc.Reindex(); err != nil {
			return c, common.CmdErr(err)
		}
		c.rebuild()
		return c, c.reloadPreview()

	case common.GoToDailyNoteMsg:
		return c, c.goToDailyNote(msg.Date)

	case searchSettledMsg:
		if c.orch.Settle(msg.gen) {
			c.rebuild()
		}
		return c, nil

	case openRequestMsg:
		return c, c.performOpen(msg.file, msg.opts)

	case previewContentMsg:
		if msg.path == c.previewPath {
			if msg.err != nil {
				c.preview.SetContent(c.styles.Muted.Render(msg.err.Error()))
			} else {
				c.preview.SetContent(wrapContent(msg.content, c.preview.Width))
			}
			c.preview.GotoTop()
		}
		return c, nil
	}

	if c.previewFocus {
		var cmd tea.Cmd
		c.preview, cmd = c.preview.Update(msg)
		return c, cmd
	}
	return c, nil
}

// ── Key handling ────────────────────────────────────────────────────────────

func (c *Controller) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	c.message = ""

	if c.input.Focused() {
		return c.handleSearchKey(msg, key)
	}

	if c.previewFocus && key != c.keys.FocusPreview && key != c.keys.ClearSearch {
		var cmd tea.Cmd
		c.preview, cmd = c.preview.Update(msg)
		return cmd
	}

	switch key {
	case c.keys.Up, "up":
		c.moveBy(-1, key)
	case c.keys.Down, "down":
		c.moveBy(1, key)
	case c.keys.PageUp:
		c.moveBy(-c.pageSize(), key)
	case c.keys.PageDown:
		c.moveBy(c.pageSize(), key)
	case c.keys.Home:
		c.jumpTo(0)
	case c.keys.End:
		c.jumpTo(len(c.result.OrderedFiles) - 1)
	case c.keys.ExtendUp:
		c.extendBy(-1, key)
	case c.keys.ExtendDown:
		c.extendBy(1, key)
	case c.keys.ExtendHome:
		c.extendTo(0)
	case c.keys.ExtendEnd:
		c.extendTo(len(c.result.OrderedFiles) - 1)
	case c.keys.Enter:
		if f := c.sel.Selected(); f != nil {
			c.engine.OpenNow(f, vault.OpenOptions{Context: vault.OpenActive, Active: true})
		}
	case c.keys.OpenInEditor:
		if f := c.sel.Selected(); f != nil {
			c.engine.OpenNow(f, vault.OpenOptions{Context: vault.OpenWindow, Active: true})
		}
	case c.keys.Space:
		if f := c.sel.Selected(); f != nil {
			if ord, ok := c.result.PathToOrdinal[f.Path]; ok {
				c.sel.ToggleFileSelection(f, ord)
			}
		}
	case c.keys.Search:
		c.ToggleSearch()
	case c.keys.ClearSearch:
		return c.handleEscape()
	case c.keys.TogglePin:
		c.togglePin()
	case c.keys.ToggleHidden:
		c.scope.ShowHidden = !c.scope.ShowHidden
		c.rebuild()
	case c.keys.CycleSort:
		c.cycleSort()
	case c.keys.CycleGroup:
		c.builder.SetGroupMode((c.builder.GroupMode() + 1) % 3)
		c.rebuild()
	case c.keys.DailyNote:
		return c.goToDailyNote(c.now())
	case c.keys.FocusPreview:
		if c.cfg.ShowPreview {
			c.previewFocus = !c.previewFocus
			c.engine.OnBlur()
		}
	}
	return nil
}

func (c *Controller) handleSearchKey(msg tea.KeyMsg, key string) tea.Cmd {
	switch key {
	case "esc":
		c.input.Blur()
		c.input.SetValue("")
		c.orch.Close()
		c.rebuild()
		return nil
	case "enter":
		// Keep the query active, hand focus back to the list.
		c.input.Blur()
		return nil
	case "up", "down":
		// Arrows navigate the result list without leaving the bar.
		dir := 1
		if key == "up" {
			dir = -1
		}
		c.moveBy(dir, key)
		return nil
	}

	before := c.input.Value()
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	if v := c.input.Value(); v != before {
		c.orch.SetRaw(v)
	}
	return cmd
}

// handleEscape peels back one layer per press: multi-selection first,
// then the active search, then nothing.
func (c *Controller) handleEscape() tea.Cmd {
	switch {
	case c.previewFocus:
		c.previewFocus = false
	case c.sel.Count() > 1:
		if f := c.sel.Selected(); f != nil {
			if ord, ok := c.result.PathToOrdinal[f.Path]; ok {
				c.sel.SetSelectedFile(f, ord)
			}
		}
	case c.orch.Active():
		c.input.Blur()
		c.input.SetValue("")
		c.orch.Close()
		c.rebuild()
	}
	return nil
}

// ── Mouse handling ──────────────────────────────────────────────────────────

func (c *Controller) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.X >= c.listWidth {
		var cmd tea.Cmd
		c.preview, cmd = c.preview.Update(msg)
		return cmd
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		c.virt.ScrollBy(-3)
	case tea.MouseButtonWheelDown:
		c.virt.ScrollBy(3)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		top := 1 // header line
		if c.searchBarVisible() {
			top++
		}
		y := msg.Y - top
		if y < 0 || y >= c.listHeight {
			return nil
		}
		idx := c.virt.IndexAtOffset(c.virt.ScrollOffset() + y)
		if idx < 0 || idx >= len(c.result.Rows) {
			return nil
		}
		row := c.result.Rows[idx]
		if row.Kind != RowFile {
			return nil
		}
		c.sel.SetUserSelection(true)
		c.sel.SetSelectedFile(row.File, row.Ordinal)
		c.engine.OpenNow(row.File, vault.OpenOptions{Context: vault.OpenActive, Active: true})
	}
	return nil
}

// ── Navigation ──────────────────────────────────────────────────────────────

func (c *Controller) pageSize() int {
	n := c.listHeight / 2
	if n < 1 {
		n = 1
	}
	return n
}

// moveBy moves the cursor delta files, clamping at the ends. A keydown
// that cannot move still arms the engine so the eventual settle opens
// the boundary file.
func (c *Controller) moveBy(delta int, key string) {
	ordered := c.result.OrderedFiles
	if len(ordered) == 0 {
		return
	}

	cur := -1
	if p := c.sel.SelectedPath(); p != "" {
		if ord, ok := c.result.PathToOrdinal[p]; ok {
			cur = ord
		}
	}

	target := cur + delta
	if cur == -1 {
		if delta >= 0 {
			target = 0
		} else {
			target = len(ordered) - 1
		}
	}
	if target < 0 {
		target = 0
	}
	if target >= len(ordered) {
		target = len(ordered) - 1
	}

	if target == cur {
		c.engine.OnNavNoMove(key, ordered[cur])
		return
	}

	f := ordered[target]
	c.sel.SetKeyboardNavigation(true)
	c.sel.SetSelectedFile(f, target)
	c.engine.OnNavMove(key, f)
	c.scrollToSelected(AlignAuto)
}

// jumpTo is the Home/End discrete jump: no debounce, open gated only by
// enter-to-open mode.
func (c *Controller) jumpTo(target int) {
	ordered := c.result.OrderedFiles
	if len(ordered) == 0 || target < 0 || target >= len(ordered) {
		return
	}
	f := ordered[target]
	c.sel.SetKeyboardNavigation(true)
	c.sel.SetSelectedFile(f, target)
	c.engine.OpenDiscrete(f)
	c.scrollToSelected(AlignAuto)
}

// extendBy grows the range selection by one file. Only the newly-reached
// boundary file rides the debounced-open pipeline, never the whole range.
func (c *Controller) extendBy(delta int, key string) {
	ordered := c.result.OrderedFiles
	if len(ordered) == 0 {
		return
	}
	cur := 0
	if p := c.sel.SelectedPath(); p != "" {
		if ord, ok := c.result.PathToOrdinal[p]; ok {
			cur = ord
		}
	}
	target := cur + delta
	if target < 0 {
		target = 0
	}
	if target >= len(ordered) {
		target = len(ordered) - 1
	}
	c.sel.ExtendTo(ordered, target)
	if target == cur {
		c.engine.OnNavNoMove(key, ordered[target])
	} else {
		c.engine.OnNavMove(key, ordered[target])
	}
	c.scrollToSelected(AlignAuto)
}

// extendTo is the discrete range jump (Shift+Home/End): no debounce, the
// boundary file opens right away, gated only by enter-to-open mode.
func (c *Controller) extendTo(target int) {
	ordered := c.result.OrderedFiles
	if len(ordered) == 0 {
		return
	}
	if target < 0 {
		target = 0
	}
	if target >= len(ordered) {
		target = len(ordered) - 1
	}
	c.sel.ExtendTo(ordered, target)
	c.engine.OpenDiscrete(ordered[target])
	c.scrollToSelected(AlignAuto)
}

func (c *Controller) scrollToSelected(align Align) {
	p := c.sel.SelectedPath()
	if p == "" {
		return
	}
	if idx, ok := c.result.PathToRow[p]; ok {
		c.virt.ScrollToIndex(idx, align)
	}
}

// ── Imperative surface ──────────────────────────────────────────────────────

// GetIndexOfPath returns the row index of a file path, or -1.
func (c *Controller) GetIndexOfPath(path string) int {
	if idx, ok := c.result.PathToRow[path]; ok {
		return idx
	}
	return -1
}

// Scope returns the active scope.
func (c *Controller) Scope() vault.Scope { return c.scope }

// SetScope switches the navigation scope and rebuilds. The folder-change
// auto-select flag controls whether the first file is picked when the
// previous selection is not in the new scope.
func (c *Controller) SetScope(scope vault.Scope) {
	c.scope = scope
	if c.cfg.AutoSelectFirst {
		c.sel.SetFolderChangeWithAutoSelect(true)
	}
	c.rebuild()
	c.scrollToSelected(AlignAuto)
}

// SelectFile selects f programmatically.
func (c *Controller) SelectFile(f *vault.FileRef, opts SelectOptions) {
	if f == nil {
		return
	}
	ord := -1
	if o, ok := c.result.PathToOrdinal[f.Path]; ok {
		ord = o
	}
	if opts.KeyboardNavigation {
		c.sel.SetKeyboardNavigation(true)
	}
	if opts.UserSelection {
		c.sel.SetUserSelection(true)
	}
	c.sel.SetSelectedFile(f, ord)
	c.scrollToSelected(opts.Align)

	switch {
	case opts.SuppressOpen:
		c.engine.OnExternalSelection(f)
	case opts.DebounceOpen:
		c.engine.OnNavMove("", f)
	default:
		c.engine.OpenNow(f, vault.OpenOptions{Context: vault.OpenActive})
	}
}

// SelectAdjacentFile moves one file up or down; returns false at the
// boundary (no wrap-around).
func (c *Controller) SelectAdjacentFile(dir int) bool {
	ordered := c.result.OrderedFiles
	if len(ordered) == 0 {
		return false
	}
	cur := -1
	if p := c.sel.SelectedPath(); p != "" {
		if ord, ok := c.result.PathToOrdinal[p]; ok {
			cur = ord
		}
	}
	target := cur + dir
	if cur == -1 {
		if dir >= 0 {
			target = 0
		} else {
			target = len(ordered) - 1
		}
	}
	if target < 0 || target >= len(ordered) {
		return false
	}
	f := ordered[target]
	c.sel.SetKeyboardNavigation(true)
	c.sel.SetSelectedFile(f, target)
	c.engine.OnNavMove("", f)
	c.scrollToSelected(AlignAuto)
	return true
}

// RevealFile scopes to the file's folder, selects it centred in the
// viewport, and opens it. Returns false when the path is unknown.
func (c *Controller) RevealFile(path string) bool {
	f := c.svc.FileByPath(path)
	if f == nil {
		return false
	}
	if c.orch.Active() {
		c.input.Blur()
		c.input.SetValue("")
		c.orch.Close()
	}
	c.scope = vault.Scope{
		Kind:               vault.ScopeFolder,
		Folder:             f.Folder,
		IncludeDescendants: c.scope.IncludeDescendants,
		ShowHidden:         c.scope.ShowHidden || f.Hidden,
	}
	c.sel.SetRevealOperation(true)
	c.sel.SetSelectedFile(f, -1)
	c.rebuild()
	c.scrollToSelected(AlignCenter)
	c.engine.OpenNow(f, vault.OpenOptions{Context: vault.OpenActive, Active: true})
	return true
}

// ToggleSearch opens the search bar, or closes it when already active.
func (c *Controller) ToggleSearch() {
	if c.orch.Toggle() {
		c.input.SetValue(c.orch.Raw())
		c.input.Focus()
	} else {
		c.input.Blur()
		c.input.SetValue("")
	}
	c.rebuild()
}

// ModifySearchWithTag toggles a tag token in the query, bypassing the
// debounce. Structural edits apply immediately.
func (c *Controller) ModifySearchWithTag(tag string, op search.Operator) {
	q := search.ToggleTag(c.orch.Raw(), tag, op)
	c.applyImmediate(q)
}

// ModifySearchWithProperty toggles a property token in the query.
// Property tokens always combine conjunctively; op is accepted for
// symmetry with the tag surface and currently narrows to AND.
func (c *Controller) ModifySearchWithProperty(key, value string, op search.Operator) {
	q := search.ToggleProp(c.orch.Raw(), key, value, op)
	c.applyImmediate(q)
}

// SetSearchDateToken replaces the query's date token.
func (c *Controller) SetSearchDateToken(token string) {
	q := search.SetDateToken(c.orch.Raw(), token)
	c.applyImmediate(q)
}

// ExecuteSearchShortcut runs a saved search: scope first, then query.
func (c *Controller) ExecuteSearchShortcut(ss config.SavedSearch) {
	switch {
	case ss.Folder != "":
		c.scope = vault.Scope{
			Kind:               vault.ScopeFolder,
			Folder:             ss.Folder,
			IncludeDescendants: c.scope.IncludeDescendants,
			ShowHidden:         c.scope.ShowHidden,
		}
	case ss.Tag != "":
		c.scope = vault.Scope{
			Kind:       vault.ScopeTag,
			Tag:        ss.Tag,
			ShowHidden: c.scope.ShowHidden,
		}
	}
	if ss.Query != "" {
		c.applyImmediate(ss.Query)
	} else {
		c.rebuild()
	}
	log.WithField("shortcut", ss.Name).Debugf("saved search executed")
}

func (c *Controller) applyImmediate(q string) {
	c.orch.SetQueryImmediate(q)
	c.input.SetValue(q)
	c.rebuild()
}

// ── Actions ─────────────────────────────────────────────────────────────────

func (c *Controller) togglePin() {
	f := c.sel.Selected()
	if f == nil {
		return
	}
	pinned, _ := c.svc.PinnedIn(f.Path, c.scope.Key())
	c.svc.SetPinned(f.Path, !pinned, c.scope.Key())
	c.rebuild()
	c.scrollToSelected(AlignAuto)
}

func (c *Controller) cycleSort() {
	next := (c.builder.SortFor(c.scope) + 1) % 6
	c.builder.SetSortOverride(c.scope.Key(), next)
	c.rebuild()
	c.scrollToSelected(AlignAuto)
	c.message = "sort: " + next.String()
	c.msgIsErr = false
}

func (c *Controller) goToDailyNote(date time.Time) tea.Cmd {
	layout := c.cfg.DailyNoteFormat
	if layout == "" {
		layout = "2006-01-02"
	}
	name := date.Format(layout) + ".md"
	path := name
	if c.cfg.DailyNoteFolder != "" {
		path = filepath.ToSlash(filepath.Join(c.cfg.DailyNoteFolder, name))
	}
	if !c.RevealFile(path) {
		return common.CmdInfo(fmt.Sprintf("no daily note for %s", date.Format("Jan 2")))
	}
	return nil
}

func (c *Controller) performOpen(f *vault.FileRef, opts vault.OpenOptions) tea.Cmd {
	if c.opener != nil {
		if err := c.opener.OpenFile(f, opts); err != nil {
			log.WithField("path", f.Path).Errorf("open failed: %v", err)
			return common.CmdErr(err)
		}
	}
	c.previewPath = f.Path
	if !c.cfg.ShowPreview {
		return nil
	}
	path := f.Path
	return func() tea.Msg {
		content, err := c.svc.Read(path)
		return previewContentMsg{path: path, content: content, err: err}
	}
}

func (c *Controller) reloadPreview() tea.Cmd {
	if !c.cfg.ShowPreview || c.previewPath == "" {
		return nil
	}
	path := c.previewPath
	return func() tea.Msg {
		content, err := c.svc.Read(path)
		return previewContentMsg{path: path, content: content, err: err}
	}
}

// ── Rebuild ─────────────────────────────────────────────────────────────────

// rebuild recomputes the row snapshot, feeds it to the virtualizer and
// repairs the selection against the new file order.
func (c *Controller) rebuild() {
	listed, err := c.svc.ListFiles(c.scope)
	if err != nil {
		log.Errorf("list files: %v", err)
		listed = nil
	}
	c.total = len(listed)

	res := c.builder.Build(c.scope, c.orch.Tokens(), c.orch.Active(), c.now())
	c.result = res
	c.virt.SetRows(res.Rows, res.OrderKey)

	opts := RepairOptions{}
	if c.sel.ConsumeFolderChangeWithAutoSelect() {
		opts.SelectFallback = true
	}
	if c.orch.Active() {
		opts.ClearIfEmpty = true
	}
	if c.sel.Repair(res.OrderedFiles, opts) {
		// The cursor moved underneath a pending open; that open no
		// longer describes user intent.
		c.engine.OnExternalSelection(c.sel.Selected())
		c.scrollToSelected(AlignAuto)
	}

	// Refresh metadata on the selected file so the preview header and
	// pin state stay current.
	if p := c.sel.SelectedPath(); p != "" {
		if f := c.svc.FileByPath(p); f != nil {
			c.sel.UpdateCurrentFile(f)
		}
	}
}

func (c *Controller) searchBarVisible() bool {
	return c.orch.Active() || c.input.Focused()
}

// ── Rendering ───────────────────────────────────────────────────────────────

// estimateRow is the shape-based height estimate used before a row has
// been measured: spacers and headers are one line, file rows depend on
// the compact-rows setting and on whether the note embeds an image.
func (c *Controller) estimateRow(r Row) int {
	switch r.Kind {
	case RowTopSpacer, RowBottomSpacer, RowHeader:
		return 1
	default:
		if c.cfg.CompactRows {
			return 1
		}
		if r.File != nil && r.File.HasImage {
			return 3
		}
		return 2
	}
}

// StatusData summarizes pane state for the application status bar.
func (c *Controller) StatusData() components.StatusBarData {
	return components.StatusBarData{
		VaultName:   filepath.Base(c.svc.Root()),
		ScopeLabel:  c.scope.Label(),
		NoteCount:   c.total,
		ShownCount:  len(c.result.OrderedFiles),
		Selected:    c.sel.Count(),
		SearchQuery: c.orch.Raw(),
		Searching:   c.orch.Active(),
		Message:     c.message,
		IsError:     c.msgIsErr,
	}
}

// View implements common.View.
func (c *Controller) View() string {
	if c.width == 0 || c.height == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(c.renderHeader())
	b.WriteByte('\n')
	if c.searchBarVisible() {
		b.WriteString(ui.Truncate(c.input.View(), c.listWidth-2))
		b.WriteByte('\n')
	}
	b.WriteString(c.renderList())
	left := b.String()

	if !c.cfg.ShowPreview || c.preview.Width <= 0 {
		return left
	}
	sep := strings.TrimRight(strings.Repeat("│\n", c.height), "\n")
	sepStyled := lipgloss.NewStyle().Foreground(c.styles.Theme.Border).Render(sep)
	right := c.styles.PanelTitle.Render(c.previewTitle()) + "\n" + c.preview.View()
	return ui.JoinHorizontalTop(left, sepStyled, right)
}

func (c *Controller) renderHeader() string {
	label := c.scope.Label()
	if label == "" {
		label = "Vault"
	}
	sort := c.builder.SortFor(c.scope).String()
	left := c.styles.Title.Render(label)
	right := c.styles.Muted.Render(sort)
	gap := c.listWidth - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return ui.Truncate(left, c.listWidth)
	}
	return " " + left + strings.Repeat(" ", gap) + right
}

func (c *Controller) previewTitle() string {
	if f := c.sel.Selected(); f != nil {
		return ui.Truncate(f.DisplayTitle(), c.preview.Width)
	}
	return "Preview"
}

// renderList renders the virtual window: only rows in the visible range
// are rendered, their real heights are recorded, and the line buffer is
// sliced to the viewport.
func (c *Controller) renderList() string {
	rows := c.result.Rows
	if len(c.result.OrderedFiles) == 0 {
		return c.renderEmpty()
	}

	start, end := c.virt.VisibleRange()
	var lines []string
	for i := start; i <= end && i < len(rows); i++ {
		rendered := c.renderRow(rows[i])
		h := strings.Count(rendered, "\n") + 1
		c.virt.RecordMeasured(i, h)
		lines = append(lines, strings.Split(rendered, "\n")...)
	}

	top := c.virt.RowTop(start)
	skip := c.virt.ScrollOffset() - top
	if skip < 0 {
		skip = 0
	}
	if skip > len(lines) {
		skip = len(lines)
	}
	lines = lines[skip:]
	if len(lines) > c.listHeight {
		lines = lines[:c.listHeight]
	}
	for len(lines) < c.listHeight {
		lines = append(lines, "")
	}

	bar := components.RenderScrollbar(c.styles, c.listHeight, c.virt.TotalSize(), c.listHeight, c.virt.ScrollOffset())
	if bar == "" {
		return strings.Join(lines, "\n")
	}
	barLines := strings.Split(bar, "\n")
	for i := range lines {
		lines[i] = ui.PadRight(lines[i], c.listWidth-1) + barLines[i]
	}
	return strings.Join(lines, "\n")
}

func (c *Controller) renderEmpty() string {
	msg := "No notes"
	if c.orch.Active() {
		msg = "No notes match " + c.orch.Debounced()
	}
	return ui.PlaceCentre(c.listWidth, c.listHeight, c.styles.Muted.Render(msg))
}

func (c *Controller) renderRow(r Row) string {
	w := c.listWidth - 1 // scrollbar column
	switch r.Kind {
	case RowTopSpacer, RowBottomSpacer:
		return ""
	case RowHeader:
		style := c.styles.ListHeader
		if r.Pinned {
			style = c.styles.PinnedHeader
		}
		return " " + style.Render(ui.Truncate(r.Label, w-1))
	}
	return c.renderFileRow(r, w)
}

func (c *Controller) renderFileRow(r Row, w int) string {
	f := r.File
	cursor := c.sel.SelectedPath() == f.Path
	multi := c.sel.Count() > 1 && c.sel.IsSelected(f.Path)

	title := c.renderTitle(r, w-4)
	marker := "  "
	if pinned, _ := c.svc.PinnedIn(f.Path, c.scope.Key()); pinned {
		marker = c.styles.PinnedHeader.Render("◆") + " "
	}
	if r.ParentLabel != "" {
		title += c.styles.FolderNote.Render(" · " + r.ParentLabel)
	}

	line := marker + title
	style := c.styles.ListItem
	switch {
	case cursor:
		style = c.styles.ListSelected
	case multi:
		style = c.styles.ListMulti
	case f.Hidden:
		style = c.styles.ListDimmed
	}
	first := style.Width(w).Render(ui.Truncate(line, w-2))
	if c.cfg.CompactRows {
		return first
	}

	second := f.Preview
	if c.cfg.ShowTags && len(f.Tags) > 0 {
		second = c.styles.TagBadge.Render("#"+strings.Join(f.Tags, " #")) + " " + second
	}
	out := first + "\n" + c.styles.PreviewText.PaddingLeft(4).Render(ui.Truncate(second, w-5))
	if f.HasImage {
		out += "\n" + c.styles.FolderNote.PaddingLeft(4).Render("◫ image")
	}
	return out
}

// renderTitle highlights matched title runes when a free-text query is
// active.
func (c *Controller) renderTitle(r Row, w int) string {
	title := r.File.DisplayTitle()
	hq := c.orch.HighlightQuery()
	if hq == "" || r.Meta == nil || len(r.Meta.TitleIndexes) == 0 {
		return ui.Truncate(title, w)
	}
	matched := make(map[int]bool, len(r.Meta.TitleIndexes))
	for _, i := range r.Meta.TitleIndexes {
		matched[i] = true
	}
	var b strings.Builder
	for i, ru := range []rune(title) {
		s := string(ru)
		if matched[i] {
			b.WriteString(c.styles.MatchText.Render(s))
		} else {
			b.WriteString(s)
		}
	}
	return b.String()
}

func wrapContent(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
