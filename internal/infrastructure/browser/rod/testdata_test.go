package rod

const (
	FormHTML = `<!DOCTYPE html>
<html>
<head><title>Form</title></head>
<body>
	<form id="login-form" onsubmit="event.preventDefault(); document.getElementById('status').textContent = 'submitted';">
		<label for="email">Email address</label>
		<input id="email" type="email" name="email" placeholder="you@example.com" />
		<label for="password">Password</label>
		<input id="password" type="password" name="password" />
		<label><input id="remember" type="checkbox" /> Remember me</label>
		<select id="country">
			<option>Canada</option>
			<option>France</option>
		</select>
		<button id="submit" type="submit">Sign in</button>
		<button id="disabled-btn" type="button" disabled>Unavailable</button>
	</form>
	<div id="status"></div>
	<div role="banner">Not interactive</div>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<head><title>Interactive</title></head>
<body>
	<button id="counter" onclick="this.textContent = 'Clicked ' + (++window.clicks)">Click me</button>
	<button id="reveal" onclick="document.getElementById('late').style.display = 'block'">Reveal</button>
	<button id="late" style="display: none">Late button</button>
	<div id="toggle" role="switch" aria-checked="false" tabindex="0"
		onclick="this.setAttribute('aria-checked', this.getAttribute('aria-checked') !== 'true')">Dark mode</div>
	<script>window.clicks = 0;</script>
</body>
</html>`

	ScrollableHTML = `<!DOCTYPE html>
<html>
<head><title>Scrollable</title></head>
<body style="margin: 0">
	<div style="height: 3000px">Tall content</div>
	<button id="bottom">Bottom button</button>
</body>
</html>`
)
