package extract

// The DOM heuristics run inside the browser as serialized payloads; the
// host process only ever sees structured data back, never raw markup.

// scoreScript counts, for each catalogue pattern, how many elements the
// current document matches. Invalid or throwing selectors count as zero.
const scoreScript = `(selectors) => selectors.map((sel) => {
	try {
		return document.querySelectorAll(sel).length;
	} catch (e) {
		return 0;
	}
})`

// rowsScript extracts raw field text from every element matched by the
// winning selector. Per element, field strategies are tried in order
// (data attributes, class names, table columns, generic nth-child) and the
// first one yielding non-empty text for all of rank, username and score
// wins; elements where no strategy succeeds are skipped.
const rowsScript = `(selector) => {
	const strategies = [
		{
			rank: '[data-testid*="rank"], [data-rank]',
			username: '[data-testid*="username"], [data-testid*="user"], [data-testid*="name"], [data-user]',
			score: '[data-testid*="score"], [data-testid*="points"], [data-score]',
		},
		{
			rank: '.rank, .position, .number',
			username: '.username, .user, .name, .player',
			score: '.score, .points, .value',
		},
		{
			rank: 'td:first-child, th:first-child',
			username: 'td:nth-child(2), th:nth-child(2)',
			score: 'td:last-child, th:last-child',
		},
		{
			rank: 'div:first-child',
			username: 'div:nth-child(2)',
			score: 'div:last-child',
		},
	];

	const rows = [];
	document.querySelectorAll(selector).forEach((item) => {
		for (let i = 0; i < strategies.length; i++) {
			const s = strategies[i];
			const rankEl = item.querySelector(s.rank);
			const userEl = item.querySelector(s.username);
			const scoreEl = item.querySelector(s.score);
			if (!rankEl || !userEl || !scoreEl) continue;

			const rank = (rankEl.textContent || '').trim();
			const username = (userEl.textContent || '').trim();
			const score = (scoreEl.textContent || '').trim();
			if (!rank || !username || !score) continue;

			rows.push({ rank: rank, username: username, score: score, strategy: i + 1 });
			break;
		}
	});
	return rows;
}`
